// Package file stores snapshots as one file per key in a directory,
// optionally gzip-compressed.
package file

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/xenking/posify/internal/domain/pos"
)

var _ pos.Repository = (*Repository)(nil)

// Repository reads and writes snapshot files under Dir. Writes go to a
// temporary file that is renamed into place.
type Repository struct {
	dir      string
	compress bool
}

// Options configure a file repository.
type Options struct {
	Dir      string
	Compress bool
}

// New creates the directory if needed and returns a repository over it.
func New(opts Options) (*Repository, error) {
	if opts.Dir == "" {
		return nil, errors.New("snapshot directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "create snapshot dir")
	}
	return &Repository{dir: opts.Dir, compress: opts.Compress}, nil
}

func (r *Repository) path(key pos.Key) string {
	name := string(key) + ".json"
	if r.compress {
		name += ".gz"
	}
	return filepath.Join(r.dir, name)
}

// Load implements pos.Repository.
func (r *Repository) Load(_ context.Context, key pos.Key) ([]byte, error) {
	f, err := os.Open(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pos.ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", key)
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = f
	if r.compress {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip reader %s", key)
		}
		defer func() { _ = zr.Close() }()
		src = zr
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	return data, nil
}

// Save implements pos.Repository.
func (r *Repository) Save(_ context.Context, key pos.Key, data []byte) (rerr error) {
	tmp, err := os.CreateTemp(r.dir, "."+string(key)+"-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if rerr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if r.compress {
		zw := pgzip.NewWriter(tmp)
		if _, err := io.Copy(zw, bytes.NewReader(data)); err != nil {
			return errors.Wrapf(err, "compress %s", key)
		}
		if err := zw.Close(); err != nil {
			return errors.Wrapf(err, "flush gzip %s", key)
		}
	} else if _, err := tmp.Write(data); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}

	if err := tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", key)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return errors.Wrapf(err, "rename %s", key)
	}
	return nil
}

// Ping checks the directory is still accessible.
func (r *Repository) Ping(context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return errors.Wrap(err, "stat snapshot dir")
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", r.dir)
	}
	return nil
}
