package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
)

// Uploader publishes every refreshed evaluation as a CSV export, overwriting
// the previous one.
type Uploader struct {
	store    Store
	prefix   string
	compress bool
	logger   *slog.Logger
}

// NewUploader creates an Uploader writing under prefix.
func NewUploader(store Store, prefix string, compress bool, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, prefix: prefix, compress: compress, logger: logger}
}

// Key returns the object key the export is written to.
func (u *Uploader) Key() string {
	key := path.Join(u.prefix, FileName)
	if u.compress {
		key += ".gz"
	}
	return key
}

// Name implements dashboard.Publisher.
func (u *Uploader) Name() string { return "export" }

// Publish implements dashboard.Publisher.
func (u *Uploader) Publish(ctx context.Context, eval dashboard.Evaluation) error {
	data, err := Encode(eval.Result, u.compress)
	if err != nil {
		return err
	}
	contentType := "text/csv"
	if u.compress {
		contentType = "application/gzip"
	}
	if err := u.store.Put(ctx, u.Key(), data, contentType); err != nil {
		return err
	}
	u.logger.Info("export uploaded", "key", u.Key(), "bytes", len(data), "snapshot_id", eval.SnapshotID)
	return nil
}

// Latest returns the CSV of the most recently uploaded export, decompressed.
// It returns ErrNotFound until the first upload.
func (u *Uploader) Latest(ctx context.Context) ([]byte, error) {
	data, err := u.store.Get(ctx, u.Key())
	if err != nil {
		return nil, err
	}
	if !u.compress {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip %s: %w", u.Key(), err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
