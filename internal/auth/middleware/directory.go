package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/rbac"
)

// StudentLookup returns the stored student record for an ID.
type StudentLookup func(ctx context.Context, id string) (exam.Student, error)

// Directory authenticates the configured administrator and registered students.
type Directory struct {
	AdminUser     string
	AdminPassHash string
	Students      StudentLookup
}

func (d Directory) Authenticate(ctx context.Context, username, password string) (string, error) {
	if d.AdminUser != "" && username == d.AdminUser {
		if bcrypt.CompareHashAndPassword([]byte(d.AdminPassHash), []byte(password)) != nil {
			return "", ErrInvalidCredentials
		}
		return rbac.RoleAdministrator, nil
	}
	st, err := d.Students(ctx, username)
	if exam.KindOf(err) == exam.KindNotFound {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup student: %w", err)
	}
	if st.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return rbac.RoleStudent, nil
}

// Role resolves the current role of a subject, for AttachRole.
func (d Directory) Role(ctx context.Context, sub string) (string, error) {
	if d.AdminUser != "" && sub == d.AdminUser {
		return rbac.RoleAdministrator, nil
	}
	if _, err := d.Students(ctx, sub); err != nil {
		return "", err
	}
	return rbac.RoleStudent, nil
}
