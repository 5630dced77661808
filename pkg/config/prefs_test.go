package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePrefsSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	store, err := NewFilePrefs(path)
	require.NoError(t, err)

	_, ok, err := store.Get(KeyFullMapHeight)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should have no value")

	require.NoError(t, store.Set(KeyFullMapHeight, false))

	value, ok, err := store.Get(KeyFullMapHeight)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, false, value)
}

func TestFilePrefsPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	store, err := NewFilePrefs(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyFullMapHeight, false))

	reopened, err := NewFilePrefs(path)
	require.NoError(t, err)

	value, ok, err := reopened.Get(KeyFullMapHeight)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, false, value)
}

func TestFilePrefsRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFilePrefs(path)
	assert.Error(t, err)
}

// errStore simulates a storage backend whose reads fail.
type errStore struct{}

func (errStore) Get(string) (interface{}, bool, error) {
	return nil, false, errors.New("storage unavailable")
}

func (errStore) Set(string, interface{}) error {
	return errors.New("storage unavailable")
}

func TestFullMapHeightDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	store, err := NewFilePrefs(path)
	require.NoError(t, err)

	t.Run("unset defaults to enabled", func(t *testing.T) {
		assert.True(t, FullMapHeight(store))
	})

	t.Run("read failure defaults to enabled", func(t *testing.T) {
		assert.True(t, FullMapHeight(errStore{}))
	})

	t.Run("non-bool value defaults to enabled", func(t *testing.T) {
		require.NoError(t, store.Set(KeyFullMapHeight, "yes"))
		assert.True(t, FullMapHeight(store))
	})

	t.Run("stored false wins", func(t *testing.T) {
		require.NoError(t, SetFullMapHeight(store, false))
		assert.False(t, FullMapHeight(store))
	})

	t.Run("stored true wins", func(t *testing.T) {
		require.NoError(t, SetFullMapHeight(store, true))
		assert.True(t, FullMapHeight(store))
	})
}
