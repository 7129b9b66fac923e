package commitment

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/halofold/halofold/logger"
)

type cacheConfig struct {
	unsafeLoad bool
	raw        bool
}

// CacheOption configures LoadOrSetup.
type CacheOption func(*cacheConfig)

// WithUnsafeLoad skips subgroup membership checks when decoding cached basis
// points. Only safe on cache directories this process, or a trusted peer,
// wrote; header and digest validation still run.
func WithUnsafeLoad() CacheOption {
	return func(c *cacheConfig) { c.unsafeLoad = true }
}

// WithRawEncoding writes freshly generated keys with uncompressed points.
func WithRawEncoding() CacheOption {
	return func(c *cacheConfig) { c.raw = true }
}

// LoadOrSetup returns the commitment key for (curve, 2^logSize), loading it
// from dir when a cached copy exists and generating (then caching) it
// otherwise.
//
// A cached copy that fails validation (wrong curve tag, wrong size, corrupt
// digest, incompatible version) is a hard error; it is never silently
// regenerated.
func LoadOrSetup[E comparable, P any](ops Ops[E, P], dir string, logSize uint64, opts ...CacheOption) (*Key[E, P], error) {
	var cfg cacheConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	size := uint64(1) << logSize
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.key", ops.Name(), logSize))
	log := logger.Logger().With().Str("curve", ops.Name()).Uint64("size", size).Logger()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		k := NewKey(ops)
		br := bufio.NewReaderSize(f, 1<<20)
		var n int64
		if cfg.unsafeLoad {
			n, err = k.UnsafeReadFrom(br)
		} else {
			n, err = k.ReadFrom(br)
		}
		if err != nil {
			return nil, fmt.Errorf("load commitment key %s: %w", path, err)
		}
		if uint64(k.Size()) != size {
			return nil, fmt.Errorf("load commitment key %s: %w: cached size %d, requested %d",
				path, ErrKeyMismatch, k.Size(), size)
		}
		log.Debug().Int64("bytes", n).Msg("commitment key loaded from cache")
		return k, nil

	case errors.Is(err, fs.ErrNotExist):
		// cache miss, fall through to generation

	default:
		return nil, fmt.Errorf("open commitment key cache %s: %w", path, err)
	}

	log.Info().Msg("generating commitment key")
	k, err := Setup(ops, int(size))
	if err != nil {
		return nil, err
	}
	if err := writeKeyFile(k, dir, path, cfg.raw); err != nil {
		return nil, fmt.Errorf("cache commitment key %s: %w", path, err)
	}
	return k, nil
}

// writeKeyFile writes the key to a temp file in dir and renames it over path,
// so a crashed run never leaves a truncated cache entry behind.
func writeKeyFile[E comparable, P any](k *Key[E, P], dir, path string, raw bool) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if raw {
		_, err = k.WriteRawTo(bw)
	} else {
		_, err = k.WriteTo(bw)
	}
	if err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
