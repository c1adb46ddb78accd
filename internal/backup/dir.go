package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes snapshots to a local directory.
type DirSink struct {
	Root string
}

func NewDirSink(root string) (*DirSink, error) {
	if root == "" {
		return nil, fmt.Errorf("backup dir required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &DirSink{Root: root}, nil
}

func (d *DirSink) Name() string { return "dir:" + d.Root }

// Put writes through a temp file and renames it so readers never see a partial backup.
func (d *DirSink) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
