// Package queue holds uploaded CVs until they are turned into candidates.
//
// The item list is persisted; file payloads are kept in memory only and are
// lost when the process stops. Process drains the pending items in waves of
// at most Config.Concurrency files.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

const DefaultConcurrency = 3

var ErrAlreadyProcessing = errors.New("the queue is already being processed")

// Persister loads and replaces the whole item list.
type Persister interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte) (string, error)
}

type CandidateCreator interface {
	CreateCandidate(ctx context.Context, c *recruiting.Candidate) (*recruiting.Candidate, error)
}

// Invalidator drops cached data that new candidates make stale.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Config struct {
	Concurrency int `mapstructure:"concurrency"`
}

type Queue struct {
	// mu serializes read-modify-write cycles of the persisted list and
	// guards payloads.
	mu       sync.Mutex
	list     Persister
	payloads map[string][]byte
	running  atomic.Bool

	extractor  TextExtractor
	fields     ai.FieldExtractor
	candidates CandidateCreator
	cache      Invalidator

	concurrency int
	logger      *zap.Logger
	newID       func() string
}

// New creates a queue. cache may be nil.
func New(list Persister, extractor TextExtractor, fields ai.FieldExtractor, candidates CandidateCreator, cache Invalidator, cfg Config, log *zap.Logger) *Queue {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Queue{
		list:        list,
		payloads:    make(map[string][]byte),
		extractor:   extractor,
		fields:      fields,
		candidates:  candidates,
		cache:       cache,
		concurrency: cfg.Concurrency,
		logger:      log.Named("queue"),
		newID:       uuid.NewString,
	}
}

// Items returns a snapshot of the list.
func (q *Queue) Items(ctx context.Context) ([]Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.list.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return items, nil
}

// Busy reports whether Process is running.
func (q *Queue) Busy() bool {
	return q.running.Load()
}

// Add appends a pending item per file. Names already in the list are skipped,
// except error items whose file was lost, which are replaced.
func (q *Queue) Add(ctx context.Context, files []File) ([]Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.list.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}

	var added []Item
	for _, f := range files {
		idx := indexByName(items, f.Name)
		if idx >= 0 {
			existing := items[idx]
			if existing.Status != StatusError || q.hasPayload(existing.ID) {
				q.logger.Warn("file is already in the queue, skipping",
					append(logger.QueueItemFields(existing.ID, f.Name), zap.String("status", string(existing.Status)))...,
				)
				continue
			}
			q.logger.Info("replacing a queue item whose file was lost", logger.QueueItemFields(existing.ID, f.Name)...)
			items = append(items[:idx], items[idx+1:]...)
		}

		item := Item{ID: q.newID(), FileName: f.Name, Status: StatusPending}
		q.payloads[item.ID] = f.Data
		items = append(items, item)
		added = append(added, item)

		q.logger.Debug("file added to the queue", logger.QueueItemFields(item.ID, item.FileName)...)
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := q.list.Save(ctx, items); err != nil {
		for _, item := range added {
			delete(q.payloads, item.ID)
		}
		return nil, fmt.Errorf("save queue: %w", err)
	}
	return added, nil
}

// Recover marks items left pending or processing by a previous process as
// failed. Their files did not survive the restart.
func (q *Queue) Recover(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.list.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}

	var n int
	for i := range items {
		if items[i].Active() {
			items[i].Status = StatusError
			items[i].Error = MsgRestarted
			n++
		}
	}

	if n == 0 {
		return 0, nil
	}
	if err := q.list.Save(ctx, items); err != nil {
		return 0, fmt.Errorf("save queue: %w", err)
	}

	q.logger.Warn("queue items were interrupted by a restart", zap.Int("items", n))
	return n, nil
}

// Clear removes every item that is not pending or processing.
func (q *Queue) Clear(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.list.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}

	kept := items[:0:0]
	for _, item := range items {
		if item.Active() {
			kept = append(kept, item)
			continue
		}
		delete(q.payloads, item.ID)
	}

	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := q.list.Save(ctx, kept); err != nil {
		return 0, fmt.Errorf("save queue: %w", err)
	}
	return removed, nil
}

func (q *Queue) hasPayload(id string) bool {
	_, ok := q.payloads[id]
	return ok
}

func indexByName(items []Item, name string) int {
	for i, item := range items {
		if item.FileName == name {
			return i
		}
	}
	return -1
}
