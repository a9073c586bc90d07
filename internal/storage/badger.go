package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Compile-time interface check.
var _ domain.Store = (*BadgerStore)(nil)

// Key prefixes. Dishes and tasks are keyed by owner so one prefix scan
// lists or clears a user's kitchen.
const (
	dishPrefix = "dish:"
	taskPrefix = "task:"
	userPrefix = "user:"
)

// BadgerStore persists everything as JSON values in BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log *logger.Logger
}

// NewBadgerStore opens (or creates) a BadgerDB database in dataDir.
func NewBadgerStore(dataDir string, log *logger.Logger) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	opts := badger.DefaultOptions(absPath)
	opts.Logger = nil // Badger's own logger is too chatty.

	return openBadger(opts, log)
}

// NewBadgerMemoryStore opens a BadgerDB database that lives only in memory.
func NewBadgerMemoryStore(log *logger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, log)
}

func openBadger(opts badger.Options, log *logger.Logger) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	if opts.InMemory {
		log.Info("badger store opened in memory")
	} else {
		log.Info("badger store opened at %s", opts.Dir)
	}
	return &BadgerStore{db: db, log: log}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func dishKey(owner, id string) []byte { return []byte(dishPrefix + owner + ":" + id) }
func taskKey(owner, id string) []byte { return []byte(taskPrefix + owner + ":" + id) }

// set stores a JSON-encoded value for a key.
func (s *BadgerStore) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// get decodes the value for a key. Missing keys return domain.ErrNotFound.
func (s *BadgerStore) get(key []byte, value any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	return json.Unmarshal(data, value)
}

// del removes a key. Missing keys return domain.ErrNotFound.
func (s *BadgerStore) del(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// scan calls fn with the raw value of every key under prefix.
func (s *BadgerStore) scan(prefix []byte, fn func([]byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(val); err != nil {
				return err
			}
		}
		return nil
	})
}

// clear deletes every key under prefix and returns how many were removed.
func (s *BadgerStore) clear(prefix []byte) (int, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// ListDishes returns the owner's dishes, oldest first.
func (s *BadgerStore) ListDishes(ctx context.Context, owner string) ([]*domain.Dish, error) {
	var out []*domain.Dish
	err := s.scan([]byte(dishPrefix+owner+":"), func(val []byte) error {
		var d domain.Dish
		if err := json.Unmarshal(val, &d); err != nil {
			return err
		}
		d.Owner = owner
		out = append(out, &d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing dishes: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	s.log.Debug("listing dishes for %s, count=%d", owner, len(out))
	return out, nil
}

// GetDish retrieves a dish by ID.
func (s *BadgerStore) GetDish(ctx context.Context, owner, id string) (*domain.Dish, error) {
	var d domain.Dish
	if err := s.get(dishKey(owner, id), &d); err != nil {
		return nil, err
	}
	d.Owner = owner
	return &d, nil
}

// SaveDish persists a dish. Overwrites if it already exists.
func (s *BadgerStore) SaveDish(ctx context.Context, dish *domain.Dish) error {
	if err := s.set(dishKey(dish.Owner, dish.ID), dish); err != nil {
		return fmt.Errorf("saving dish %s: %w", dish.ID, err)
	}
	s.log.Debug("saved dish %s (%s) for %s", dish.ID, dish.Name, dish.Owner)
	return nil
}

// DeleteDish removes a dish by ID.
func (s *BadgerStore) DeleteDish(ctx context.Context, owner, id string) error {
	return s.del(dishKey(owner, id))
}

// ClearDishes removes every dish the owner has and reports how many.
func (s *BadgerStore) ClearDishes(ctx context.Context, owner string) (int, error) {
	return s.clear([]byte(dishPrefix + owner + ":"))
}

// ListTasks returns the owner's tasks, oldest first.
func (s *BadgerStore) ListTasks(ctx context.Context, owner string) ([]*domain.Task, error) {
	var out []*domain.Task
	err := s.scan([]byte(taskPrefix+owner+":"), func(val []byte) error {
		var t domain.Task
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}
		t.Owner = owner
		out = append(out, &t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetTask retrieves a task by ID.
func (s *BadgerStore) GetTask(ctx context.Context, owner, id string) (*domain.Task, error) {
	var t domain.Task
	if err := s.get(taskKey(owner, id), &t); err != nil {
		return nil, err
	}
	t.Owner = owner
	return &t, nil
}

// SaveTask persists a task. Overwrites if it already exists.
func (s *BadgerStore) SaveTask(ctx context.Context, task *domain.Task) error {
	if err := s.set(taskKey(task.Owner, task.ID), task); err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task by ID.
func (s *BadgerStore) DeleteTask(ctx context.Context, owner, id string) error {
	return s.del(taskKey(owner, id))
}

// ClearTasks removes every task the owner has and reports how many.
func (s *BadgerStore) ClearTasks(ctx context.Context, owner string) (int, error) {
	return s.clear([]byte(taskPrefix + owner + ":"))
}

// GetUser retrieves a user by ID.
func (s *BadgerStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.get([]byte(userPrefix+id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser persists a user. Overwrites if it already exists.
func (s *BadgerStore) SaveUser(ctx context.Context, user *domain.User) error {
	return s.set([]byte(userPrefix+user.ID), user)
}
