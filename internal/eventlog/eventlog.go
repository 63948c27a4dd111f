// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package eventlog is the append-only RecommendationEvent log on BadgerDB.
//
// Key layout:
//
//	event:<group>:<sequence>   -> JSON RecommendationEvent
//
// The sequence comes from a badger.Sequence and is zero-padded, so a prefix
// scan per group returns events in append order. An append is one Update
// transaction writing one new key; nothing is read back or rewritten.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/newsrec/internal/logging"
	"github.com/tomtom215/newsrec/internal/metrics"
	"github.com/tomtom215/newsrec/internal/recommend"
	"github.com/tomtom215/newsrec/internal/validation"
)

const (
	eventPrefix = "event:"
	sequenceKey = "seq:event"

	// sequenceBandwidth is how many sequence numbers are leased per disk write.
	sequenceBandwidth = 1000

	storeLabel = "badger"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("event log is closed")

// Config configures the badger event log.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// SyncWrites fsyncs every append.
	SyncWrites bool

	// InMemory keeps everything in memory.
	InMemory bool
}

// Log is a badger-backed recommend.EventLog.
type Log struct {
	db  *badger.DB
	seq *badger.Sequence

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the event log.
func Open(cfg Config) (*Log, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("event log path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("get event sequence: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("in_memory", cfg.InMemory).
		Msg("Event log opened")

	return &Log{db: db, seq: seq}, nil
}

func eventKey(group recommend.Group, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", eventPrefix, group, seq))
}

func groupPrefix(group recommend.Group) []byte {
	return []byte(eventPrefix + string(group) + ":")
}

// Append stores one event.
func (l *Log) Append(ctx context.Context, event recommend.RecommendationEvent) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeLabel, "append_event", time.Since(start), err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return recommend.Unavailable("append event", ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateEvent(&event); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	n, err := l.seq.Next()
	if err != nil {
		return recommend.Unavailable("next event sequence", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(eventKey(event.Group, n), data))
	})
	if err != nil {
		return recommend.Unavailable("append event", err)
	}
	return nil
}

// ListEvents returns the events of one group in append order.
func (l *Log) ListEvents(ctx context.Context, group recommend.Group) (events []recommend.RecommendationEvent, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(storeLabel, "list_events", time.Since(start), err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, recommend.Unavailable("list events", ErrClosed)
	}

	events = make([]recommend.RecommendationEvent, 0)
	err = l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := groupPrefix(group)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()

			var ev recommend.RecommendationEvent
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable event")
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, recommend.Unavailable("list events", err)
	}
	return events, nil
}

// Count returns the number of stored events across all groups.
func (l *Log) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, ErrClosed
	}

	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(eventPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space until badger reports nothing to rewrite.
func (l *Log) RunGC(ratio float64) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	for {
		err := l.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Ping reports whether the log is open.
func (l *Log) Ping(context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed || l.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close releases the sequence lease and closes badger.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if err := l.seq.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release sequence: %w", err))
	}
	if err := l.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close BadgerDB: %w", err))
	}
	return errors.Join(errs...)
}
