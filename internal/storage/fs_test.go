package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := s.Put("scores/summary.csv", strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "scores/summary.csv", key)

	rc, err := s.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "a,b\n", string(b))

	_, err = s.Get("missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_KeysStayInsideBase(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	key, err := s.Put("../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)
}

func TestMemStore(t *testing.T) {
	m := NewMemStore()
	_, err := m.Put("/a/b", strings.NewReader("v"))
	require.NoError(t, err)
	rc, err := m.Get("a/b")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "v", string(b))
	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
