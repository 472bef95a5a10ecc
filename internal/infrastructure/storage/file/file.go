// Package file stores each collection as a JSON file in a directory,
// the on-disk counterpart of the browser storage the ledger started on.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"ricemill/internal/domain/store"
)

// Backend reads and writes <dir>/<collection>.json.
type Backend struct {
	dir string
}

// New creates the directory if needed.
func New(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Backend{dir: dir}, nil
}

func (b *Backend) path(c store.Collection) string {
	return filepath.Join(b.dir, string(c)+".json")
}

// Get returns nil when the file does not exist yet.
func (b *Backend) Get(ctx context.Context, c store.Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	return data, nil
}

// Set writes through a temp file and rename so readers never see a torn file.
func (b *Backend) Set(ctx context.Context, c store.Collection, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, "."+string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", c, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", c, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c, err)
	}
	if err := os.Rename(tmp.Name(), b.path(c)); err != nil {
		return fmt.Errorf("replace %s: %w", c, err)
	}
	return nil
}

// SetMany writes collections in name order. Each file is replaced
// atomically; a crash between files can still leave a partial commit.
func (b *Backend) SetMany(ctx context.Context, writes map[store.Collection][]byte) error {
	names := make([]string, 0, len(writes))
	for c := range writes {
		names = append(names, string(c))
	}
	sort.Strings(names)
	for _, name := range names {
		c := store.Collection(name)
		if err := b.Set(ctx, c, writes[c]); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks that the directory is still there.
func (b *Backend) Ping(context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}
