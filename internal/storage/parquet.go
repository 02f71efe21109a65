package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ErrIO reports an unreadable input or an unwritable output.
var ErrIO = errors.New("i/o failure")

// rowGroupSize caps the rows written per Parquet row group.
const rowGroupSize int64 = 128 * 1024

// Options controls how tables are written.
type Options struct {
	Compression string // "snappy", "zstd", "gzip" or "none"
}

// DefaultOptions matches what pandas/pyarrow write by default.
func DefaultOptions() Options {
	return Options{Compression: "snappy"}
}

// ParseCompression maps a codec name onto a Parquet codec.
func ParseCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unknown compression %q", name)
	}
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %w", ErrIO, path, err)
	}
	return nil
}

// ReadTable loads a whole Parquet file into memory.
func ReadTable(ctx context.Context, path string, mem memory.Allocator) (arrow.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("%w: read parquet %s: %w", ErrIO, path, err)
	}
	return tbl, nil
}

// WriteRecord writes rec to path as a single Parquet file.
func WriteRecord(path string, rec arrow.Record, opts Options) error {
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()
	return WriteTable(path, tbl, opts)
}

// WriteTable writes tbl to path. The file is written next to path under a
// temporary name and renamed into place, so readers never see a partial
// file and a failed write leaves any previous file untouched.
func WriteTable(path string, tbl arrow.Table, opts Options) error {
	codec, err := ParseCompression(opts.Compression)
	if err != nil {
		return err
	}
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %s: %w", ErrIO, path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	// The parquet writer closes sinks that implement io.Closer; writerOnly
	// hides Close so the file can still be synced.
	buf := bufio.NewWriter(tmp)
	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	if err := pqarrow.WriteTable(tbl, writerOnly{buf}, rowGroupSize, props, arrProps); err != nil {
		return fmt.Errorf("%w: encode parquet %s: %w", ErrIO, path, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		committed = true
		return fmt.Errorf("%w: rename into %s: %w", ErrIO, path, err)
	}
	committed = true
	return nil
}

type writerOnly struct {
	io.Writer
}
