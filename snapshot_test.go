package omsvalues

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSnapshot_ReadWrite(t *testing.T) {
	s := NewMemSnapshot()

	require.NoError(t, s.WriteResource("resources/gains.ssv", []byte("first")))
	require.NoError(t, s.WriteResource("resources/gains.ssv", []byte("second")))

	data, err := s.ReadResource("resources/gains.ssv")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	data, err = s.ReadResource("./resources/../resources/gains.ssv")
	require.NoError(t, err, "names are cleaned before use")
	assert.Equal(t, "second", string(data))
}

func TestDirSnapshot_NoTempFilesLeft(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewDirSnapshot(fs, "/project")
	require.NoError(t, s.WriteResource("resources/a.ssv", []byte("data")))

	entries, err := afero.ReadDir(fs, "/project/resources")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.ssv", entries[0].Name())
	assert.Equal(t, "/project", s.Root())
	assert.Same(t, fs, s.Fs())
}

func TestDirSnapshot_NotFound(t *testing.T) {
	s := NewMemSnapshot()
	_, err := s.ReadResource("missing.ssv")
	assert.True(t, errors.Is(err, ErrResourceNotFound))
}

func TestDirSnapshot_InvalidNames(t *testing.T) {
	s := NewMemSnapshot()
	for _, name := range []string{"", "/etc/passwd", "..", "../outside.ssv", "resources/../../outside.ssv"} {
		t.Run(name, func(t *testing.T) {
			_, err := s.ReadResource(name)
			assert.True(t, errors.Is(err, ErrInvalidResourceName), "read: %v", err)
			err = s.WriteResource(name, []byte("x"))
			assert.True(t, errors.Is(err, ErrInvalidResourceName), "write: %v", err)
			err = s.DeleteResource(name)
			assert.True(t, errors.Is(err, ErrInvalidResourceName), "delete: %v", err)
		})
	}
}

func TestDirSnapshot_Delete(t *testing.T) {
	s := NewMemSnapshot()
	require.NoError(t, s.WriteResource("a.ssv", []byte("x")))

	require.NoError(t, s.DeleteResource("a.ssv"))
	require.NoError(t, s.DeleteResource("a.ssv"), "deleting a missing document is not an error")

	_, err := s.ReadResource("a.ssv")
	assert.True(t, errors.Is(err, ErrResourceNotFound))
}

func TestDirSnapshot_TooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates more than MaxResourceSize")
	}
	s := NewMemSnapshot()
	big := bytes.Repeat([]byte{'x'}, MaxResourceSize+1)
	assert.ErrorIs(t, s.WriteResource("big.ssv", big), ErrResourceTooLarge)

	_, err := s.ReadResource("big.ssv")
	assert.ErrorIs(t, err, ErrResourceNotFound, "nothing was written")
}

func TestDirSnapshot_OsFs(t *testing.T) {
	dir := t.TempDir()
	s := NewDirSnapshot(afero.NewOsFs(), dir)

	require.NoError(t, s.WriteResource("resources/a.ssv", []byte("on disk")))
	data, err := os.ReadFile(filepath.Join(dir, "resources", "a.ssv"))
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))
}

func TestGenerateTempFileName(t *testing.T) {
	a, err := generateTempFileName("/p/a.ssv")
	require.NoError(t, err)
	b, err := generateTempFileName("/p/a.ssv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "/p/a.ssv.tmp."))
	assert.Len(t, strings.TrimPrefix(a, "/p/a.ssv.tmp."), 16)
	assert.NotEqual(t, a, b)
}
