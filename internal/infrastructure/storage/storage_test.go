package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

func exerciseLocalStorage(t *testing.T, s repository.LocalStorage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "cart", `{"1":2}`))
	value, ok, err := s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"1":2}`, value)

	// last write wins
	require.NoError(t, s.SetItem(ctx, "cart", `{"1":5}`))
	value, _, err = s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `{"1":5}`, value)

	require.NoError(t, s.RemoveItem(ctx, "cart"))
	require.NoError(t, s.RemoveItem(ctx, "missing"))
	_, ok, err = s.GetItem(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLocalStorage(t *testing.T) {
	exerciseLocalStorage(t, NewMemoryLocalStorage())
}

func TestSQLiteLocalStorage(t *testing.T) {
	s, err := NewSQLiteLocalStorage(filepath.Join(t.TempDir(), "nested", "storage.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseLocalStorage(t, s)
}

func TestSQLiteLocalStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	ctx := context.Background()

	s, err := NewSQLiteLocalStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "label_printer", "zebra-1"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteLocalStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.GetItem(ctx, "label_printer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "zebra-1", value)
}

func TestNewSQLiteLocalStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteLocalStorage("")
	assert.Error(t, err)
}
