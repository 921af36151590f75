package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const msgInterrupted = "processing was interrupted; it will be retried on the next run"

var errPayloadLost = errors.New(MsgRestarted)

// Process turns pending items into candidates placed in folderID (nil for no
// folder). Failed items keep their file and are retried by the next call.
//
// When ctx is cancelled no new wave is started; the items already claimed are
// still settled and the remaining ones stay pending.
func (q *Queue) Process(ctx context.Context, folderID *int64) (Report, error) {
	if !q.running.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyProcessing
	}
	defer q.running.Store(false)

	log := logger.WithFields(q.logger, logger.IDField(logger.FieldFolder, folderID)...)

	// List writes must land even after the caller went away, otherwise claimed
	// items would stay processing.
	bookkeeping := context.WithoutCancel(ctx)

	var (
		report Report
		mu     sync.Mutex
	)

	defer func() {
		if err := q.sweep(bookkeeping); err != nil {
			log.Error("could not release interrupted items", zap.Error(err))
		}
	}()

	if err := q.requeueFailed(bookkeeping); err != nil {
		return Report{}, err
	}

	var stopErr error
	for wave := 1; ; wave++ {
		if err := ctx.Err(); err != nil {
			log.Warn("processing stopped, remaining items stay pending", zap.Error(err))
			stopErr = err
			break
		}

		batch, err := q.claim(bookkeeping)
		if err != nil {
			stopErr = err
			break
		}
		if len(batch) == 0 {
			break
		}

		log.Info("processing wave", zap.Int("wave", wave), zap.Int("items", len(batch)))

		var g errgroup.Group
		for _, item := range batch {
			g.Go(func() error {
				candidateID, err := q.processItem(ctx, bookkeeping, item, folderID, log)

				mu.Lock()
				defer mu.Unlock()
				report.Processed++
				if err != nil {
					report.Failed++
					return nil
				}
				report.Succeeded++
				report.Candidates = append(report.Candidates, candidateID)
				return nil
			})
		}
		// Units never return errors; failures are recorded on the items.
		_ = g.Wait()
	}

	if report.Succeeded > 0 && q.cache != nil {
		if err := q.cache.Invalidate(bookkeeping); err != nil {
			log.Warn("could not invalidate the postings summary", zap.Error(err))
		}
	}

	log.Info("queue processed",
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)

	return report, stopErr
}

// processItem runs one file through extraction and candidate creation and
// records the outcome on the item.
func (q *Queue) processItem(ctx, bookkeeping context.Context, item Item, folderID *int64, log *zap.Logger) (int64, error) {
	log = log.With(logger.QueueItemFields(item.ID, item.FileName)...)

	candidate, err := q.ingest(ctx, item, folderID)
	if err != nil {
		log.Warn("file failed", zap.Error(err))
		q.finish(bookkeeping, item.ID, StatusError, err.Error(), nil)
		return 0, err
	}

	log.Info("candidate created", zap.Int64(logger.FieldCandidate, candidate.ID))
	q.finish(bookkeeping, item.ID, StatusSuccess, "", &candidate.ID)
	return candidate.ID, nil
}

func (q *Queue) ingest(ctx context.Context, item Item, folderID *int64) (*recruiting.Candidate, error) {
	q.mu.Lock()
	payload, ok := q.payloads[item.ID]
	q.mu.Unlock()
	if !ok {
		return nil, errPayloadLost
	}

	text, err := q.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, err
	}
	if err := pdftext.Usable(text); err != nil {
		return nil, err
	}

	fields, err := q.fields.ExtractFields(ctx, text)
	if err != nil {
		return nil, err
	}

	created, err := q.candidates.CreateCandidate(ctx, &recruiting.Candidate{
		FileName:      item.FileName,
		RawFileBase64: pdftext.EncodeDataURL(payload),
		ExtractedText: text,
		FullName:      fields.FullName,
		Email:         fields.Email,
		Phone:         fields.Phone,
		FolderID:      folderID,
	})
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return created, nil
}

// requeueFailed puts error items that still hold their file back to pending.
func (q *Queue) requeueFailed(ctx context.Context) error {
	return q.mutate(ctx, func(items []Item) bool {
		changed := false
		for i := range items {
			if items[i].Status == StatusError && q.hasPayload(items[i].ID) {
				items[i].Status = StatusPending
				items[i].Error = ""
				changed = true
			}
		}
		return changed
	})
}

// claim marks up to concurrency pending items as processing and returns them.
// Pending items whose file is gone fail right away.
func (q *Queue) claim(ctx context.Context) ([]Item, error) {
	var batch []Item
	err := q.mutate(ctx, func(items []Item) bool {
		changed := false
		for i := range items {
			if items[i].Status != StatusPending {
				continue
			}
			if !q.hasPayload(items[i].ID) {
				items[i].Status = StatusError
				items[i].Error = MsgRestarted
				changed = true
				continue
			}
			if len(batch) == q.concurrency {
				continue
			}
			items[i].Status = StatusProcessing
			batch = append(batch, items[i])
			changed = true
		}
		return changed
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// sweep fails items that were left processing because their outcome could
// not be saved.
func (q *Queue) sweep(ctx context.Context) error {
	return q.mutate(ctx, func(items []Item) bool {
		changed := false
		for i := range items {
			if items[i].Status == StatusProcessing {
				items[i].Status = StatusError
				items[i].Error = msgInterrupted
				changed = true
			}
		}
		return changed
	})
}

func (q *Queue) finish(ctx context.Context, id string, status Status, message string, candidateID *int64) {
	err := q.mutate(ctx, func(items []Item) bool {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			items[i].Status = status
			items[i].Error = message
			items[i].CandidateID = candidateID
			return true
		}
		return false
	})
	if err != nil {
		q.logger.Error("could not record the item outcome",
			append(logger.QueueItemFields(id, ""), zap.String("status", string(status)), zap.Error(err))...,
		)
		return
	}

	// The payload is dropped only once the success is persisted.
	if status == StatusSuccess {
		q.mu.Lock()
		delete(q.payloads, id)
		q.mu.Unlock()
	}
}

// mutate loads the list, applies fn and saves the list when fn reports a change.
func (q *Queue) mutate(ctx context.Context, fn func(items []Item) bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.list.Load(ctx)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}
	if !fn(items) {
		return nil
	}
	if err := q.list.Save(ctx, items); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}
