// Package history keeps the final tallies of finished sessions in badger.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"detectdemo/internal/dao"
)

const recordKeyPrefix = "session:"

var ErrNotFound = errors.New("history record not found")

type Store struct {
	db     *badger.DB
	logger *logrus.Entry
}

func NewStore(dir string, logger *logrus.Entry) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", dir, err)
	}
	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(uuid string) []byte {
	return []byte(recordKeyPrefix + uuid)
}

func (s *Store) Put(rec *dao.HistoryRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Uuid), val)
	})
}

func (s *Store) Get(uuid string) (*dao.HistoryRecord, error) {
	rec := &dao.HistoryRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(uuid))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) Delete(uuid string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(uuid))
	})
}

// List returns records newest first, paged by start and limit. A limit of 0
// returns everything after start.
func (s *Store) List(start, limit int) ([]dao.HistoryRecord, int64, error) {
	var records []dao.HistoryRecord
	prefix := []byte(recordKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rec := dao.HistoryRecord{}
				if err := json.Unmarshal(val, &rec); err != nil {
					s.logger.WithError(err).Warnf("skip bad history record %s", item.Key())
					return nil
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FinishTime > records[j].FinishTime
	})

	total := int64(len(records))
	if start >= len(records) {
		return []dao.HistoryRecord{}, total, nil
	}
	records = records[start:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, total, nil
}
