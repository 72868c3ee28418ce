package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey(7, "/tmp/My Invoice (1).pdf")
	assert.True(t, strings.HasPrefix(key, "users/7/"), key)
	assert.True(t, strings.HasSuffix(key, "-My_Invoice__1_.pdf"), key)

	assert.NotEqual(t, NewObjectKey(7, "a.pdf"), NewObjectKey(7, "a.pdf"))
	assert.True(t, strings.HasSuffix(NewObjectKey(1, ""), "-document"))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.UploadObject(ctx, "users/1/a.csv", []byte("date,amount\n")))
	require.NoError(t, s.UploadObject(ctx, "users/2/b.csv", []byte("x")))

	objects, err := s.ListObjects(ctx, "users/1/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, ObjectInfo{Key: "users/1/a.csv", Size: 12}, objects[0])

	dest := filepath.Join(t.TempDir(), "nested", "a.csv")
	require.NoError(t, s.DownloadObject(ctx, "users/1/a.csv", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "date,amount\n", string(data))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.UploadObject(context.Background(), "../outside.txt", []byte("x")))
	assert.Error(t, s.DownloadObject(context.Background(), "../../etc/passwd", filepath.Join(t.TempDir(), "x")))
}
