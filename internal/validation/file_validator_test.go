package validation

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfsclean/internal/errors"
	"lfsclean/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pub0124.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		path    string
		errType errors.ErrorType
	}{
		{name: "existing directory", path: dir},
		{name: "missing directory", path: filepath.Join(dir, "missing"), errType: errors.ErrTypeNotFound},
		{name: "file not directory", path: file, errType: errors.ErrTypeValidation},
	}

	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputDirectory(tt.path)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.errType, errors.TypeOf(err))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file must be removed")
}

func TestFileValidator_ValidateExtract(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pub0124.csv", "pub0124.xlsx", "notes.txt", "~$pub0124.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	tests := []struct {
		name  string
		file  string
		check func(t *testing.T, err error)
	}{
		{name: "csv", file: "pub0124.csv", check: func(t *testing.T, err error) { assert.NoError(t, err) }},
		{name: "xlsx", file: "pub0124.xlsx", check: func(t *testing.T, err error) { assert.NoError(t, err) }},
		{name: "unsupported", file: "notes.txt", check: func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
		}},
		{name: "lock file", file: "~$pub0124.xlsx", check: func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeValidation, errors.TypeOf(err))
		}},
		{name: "missing", file: "pub0224.csv", check: func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
		}},
		{name: "directory", file: ".", check: func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeValidation, errors.TypeOf(err))
		}},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, v.ValidateExtract(filepath.Join(dir, tt.file)))
		})
	}
}
