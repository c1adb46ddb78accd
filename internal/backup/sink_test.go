package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	assert.Equal(t, "backup-1700000000.json", ObjectKey("", at))
	assert.Equal(t, "nightly/backup-1700000000.json", ObjectKey("/nightly/", at))
	assert.Equal(t, "a/b/backup-1700000000.json", ObjectKey(" a/b ", at))
}

func TestDirSinkPut(t *testing.T) {
	root := t.TempDir()
	sink, err := NewDirSink(root)
	require.NoError(t, err)

	require.NoError(t, sink.Put(context.Background(), "nightly/backup-1.json", []byte(`{"version":1}`)))
	data, err := os.ReadFile(filepath.Join(root, "nightly", "backup-1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(data))

	entries, err := os.ReadDir(filepath.Join(root, "nightly"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sink.Put(ctx, "backup-2.json", []byte("{}")))
}

func TestMinIOSinkRequiresEndpointAndBucket(t *testing.T) {
	_, err := NewMinIOSink(context.Background(), MinIOConfig{Bucket: "b"})
	assert.Error(t, err)
	_, err = NewMinIOSink(context.Background(), MinIOConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}
