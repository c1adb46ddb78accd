package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yungbote/maintenance-planner/internal/backup"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"github.com/yungbote/maintenance-planner/internal/services"
)

// BackupUploader exports a snapshot and writes it to every configured sink.
type BackupUploader struct {
	log       *logger.Logger
	snapshots services.SnapshotService
	sinks     []backup.Sink
	prefix    string
	Backoff   func() retry.Backoff
}

func NewBackupUploader(baseLog *logger.Logger, snapshots services.SnapshotService, sinks []backup.Sink, prefix string) *BackupUploader {
	return &BackupUploader{
		log:       baseLog.With("job", "BackupUploader"),
		snapshots: snapshots,
		sinks:     sinks,
		prefix:    prefix,
		Backoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(time.Second))
		},
	}
}

func (b *BackupUploader) Name() string { return "backup_uploader" }

func (b *BackupUploader) RunOnce(ctx context.Context) error {
	_, err := b.Upload(ctx)
	return err
}

// Upload exports once and returns the object key written. A sink failure does
// not stop the remaining sinks.
func (b *BackupUploader) Upload(ctx context.Context) (string, error) {
	if len(b.sinks) == 0 {
		return "", fmt.Errorf("no backup sinks configured")
	}
	doc, err := b.snapshots.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key := backup.ObjectKey(b.prefix, time.Unix(doc.ExportedAtUnix, 0))

	var errs []error
	for _, sink := range b.sinks {
		err := retry.Do(ctx, b.Backoff(), func(ctx context.Context) error {
			if err := sink.Put(ctx, key, data); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			b.log.Warn("backup upload failed", "sink", sink.Name(), "key", key, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		b.log.Info("backup uploaded", "sink", sink.Name(), "key", key, "bytes", len(data),
			"plans", len(doc.Plans), "executions", len(doc.Executions))
	}
	return key, errors.Join(errs...)
}
