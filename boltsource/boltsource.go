// Package boltsource provides a dataloader source that reads from a bbolt
// database. The grouping key names a bucket, the item key a record key;
// every flush issues a single read transaction per bucket covering all
// requested keys.
package boltsource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/UnAfraid/dataloader"
)

// Config configures a bolt-backed source. DB is required.
type Config struct {
	// DB is the open bbolt database to read from.
	DB *bbolt.DB

	// Missing decides how absent records are cached. A missing bucket
	// resolves every requested key as missing.
	Missing dataloader.MissingPolicy

	// Timeout bounds each read transaction. Zero means no deadline beyond
	// the caller's context.
	Timeout time.Duration

	// Logger receives debug-level flush activity. Nil disables logging.
	Logger logrus.FieldLogger
}

// New returns a KV-style source reading from bbolt buckets.
func New(config Config) *dataloader.BatchSource[string, string, []byte] {
	return dataloader.NewSource(dataloader.SourceConfig[string, string, []byte]{
		Fetch:   fetcher(config.DB),
		Missing: config.Missing,
		Timeout: config.Timeout,
		Logger:  config.Logger,
	})
}

func fetcher(db *bbolt.DB) dataloader.FetchFunc[string, string, []byte] {
	return func(ctx context.Context, bucketName string, keys []string) (map[string][]byte, error) {
		fetched := make(map[string][]byte, len(keys))
		err := db.View(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket([]byte(bucketName))
			if bucket == nil {
				return nil
			}
			for _, key := range keys {
				if err := ctx.Err(); err != nil {
					return err
				}
				value := bucket.Get([]byte(key))
				if value == nil {
					continue
				}
				// bbolt slices are only valid for the life of the
				// transaction
				cpy := make([]byte, len(value))
				copy(cpy, value)
				fetched[key] = cpy
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read bucket %q", bucketName)
		}
		return fetched, nil
	}
}
