package cache

import (
	"fmt"
	"strconv"
)

// TableKey is the backend key of one entry of a table.
func TableKey(table, id string) string {
	return fmt.Sprintf("%s:%s", table, id)
}

// SessionKey is the backend key holding the values of one HTTP session.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// IntID renders an integer entity ID as a table ID.
func IntID(id int) string { return strconv.Itoa(id) }
