package backup

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	// DownloadName is the attachment name offered for manual exports.
	DownloadName = "maintenance-planner-backup.json"
	contentType  = "application/json"
)

// Sink stores a serialized snapshot under key.
type Sink interface {
	Name() string
	Put(ctx context.Context, key string, data []byte) error
}

// ObjectKey names a scheduled backup taken at t, e.g. "nightly/backup-1700000000.json".
func ObjectKey(prefix string, t time.Time) string {
	name := fmt.Sprintf("backup-%d.json", t.Unix())
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
