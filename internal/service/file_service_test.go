package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileServiceRoundTrip(t *testing.T) {
	fs := NewLocalFileService(nil, "/uploads", t.TempDir())
	require.NotNil(t, fs)

	rel, err := fs.Save("a.txt", []byte("hello"), "2026/09/01")
	require.NoError(t, err)
	assert.Equal(t, "2026/09/01/a.txt", rel)
	assert.True(t, fs.Exists(rel))

	data, err := fs.Read(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	abs, err := fs.Resolve(rel)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs) || abs != rel)

	ok, err := fs.Delete(rel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, fs.Exists(rel))

	// 再删一次按成功处理
	ok, err = fs.Delete(rel)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalFileServiceResolveMissing(t *testing.T) {
	fs := NewLocalFileService(nil, "/uploads", t.TempDir())
	require.NotNil(t, fs)

	_, err := fs.Resolve("nope.txt")
	assert.Error(t, err)

	_, err = fs.Read("nope.txt")
	assert.Error(t, err)
}

func TestLocalFileServiceList(t *testing.T) {
	fs := NewLocalFileService(nil, "/uploads", t.TempDir())
	require.NotNil(t, fs)

	_, err := fs.Save("a.txt", []byte("1"), "sub")
	require.NoError(t, err)
	_, err = fs.Save("b.txt", []byte("2"), "sub")
	require.NoError(t, err)

	files, err := fs.List("sub")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	missing, err := fs.List("nothing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
