package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/JaimeStill/rively/pkg/storage"
)

// Sink persists encoded audit entries, one append-only stream per target.
type Sink interface {
	Append(ctx context.Context, target string, entry []byte) error
	Read(ctx context.Context, target string) (io.ReadCloser, error)
}

type fileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink writes each target to <dir>/<target>.log.
func NewFileSink(dir string) Sink {
	return &fileSink{dir: dir}
}

func (f *fileSink) path(target string) string {
	return filepath.Join(f.dir, filepath.FromSlash(target)+".log")
}

func (f *fileSink) Append(_ context.Context, target string, entry []byte) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(entry); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

func (f *fileSink) Read(_ context.Context, target string) (io.ReadCloser, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path(target))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return file, nil
}

type blobSink struct {
	store  storage.System
	prefix string
}

// NewBlobSink writes each target to the append blob <prefix>/<target>.log.
func NewBlobSink(store storage.System, prefix string) Sink {
	return &blobSink{store: store, prefix: prefix}
}

func (b *blobSink) key(target string) string {
	if b.prefix == "" {
		return target + ".log"
	}
	return b.prefix + "/" + target + ".log"
}

func (b *blobSink) Append(ctx context.Context, target string, entry []byte) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}
	return b.store.Append(ctx, b.key(target), entry)
}

func (b *blobSink) Read(ctx context.Context, target string) (io.ReadCloser, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}

	body, err := b.store.Download(ctx, b.key(target))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}
