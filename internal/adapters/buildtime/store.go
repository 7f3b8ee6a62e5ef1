// Package buildtime stores how long nodes took to build, keyed by static uid.
package buildtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
)

const keyPrefix = "buildtime:"

// record is the stored value of one static uid.
type record struct {
	Timestamp time.Time `json:"ts"`
	Seconds   int64     `json:"seconds"`
}

// Store implements ports.BuildTimeCache on badger.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

var _ ports.BuildTimeCache = (*Store)(nil)

// Open opens the store in dir. With inMemory nothing is persisted and dir is ignored.
func Open(dir string, inMemory bool, logger ports.Logger) (*Store, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error()), "path", dir)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error()), "path", dir)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Touch stores seconds as the latest build time of staticUID.
func (s *Store) Touch(_ context.Context, staticUID string, seconds int64) error {
	data, err := json.Marshal(record{Timestamp: s.now().UTC(), Seconds: seconds})
	if err != nil {
		return zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error())
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+staticUID), data)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error()), "static_uid", staticUID)
	}
	return nil
}

// LastUsage returns the time and the value of the latest Touch of staticUID.
func (s *Store) LastUsage(_ context.Context, staticUID string) (time.Time, int64, bool, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + staticUID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, 0, false, nil
	}
	if err != nil {
		return time.Time{}, 0, false, zerr.With(zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error()), "static_uid", staticUID)
	}
	return rec.Timestamp, rec.Seconds, true, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrBuildTimeStoreFailed.Error())
	}
	return nil
}

// badgerLogger routes badger's internal logging to the application logger.
type badgerLogger struct {
	logger ports.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(zerr.New(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
