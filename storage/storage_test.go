package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save([]byte("conteudo"), "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(name))

	b, err := os.ReadFile(s.Path(name))
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(b))

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(s.Path(name))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingIsNotError(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete("nunca-existiu.png"))
	assert.NoError(t, s.Delete(""))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save([]byte("a"), "foto.jpg")
	require.NoError(t, err)
	b, err := s.Save([]byte("b"), "foto.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	names, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, names)
}
