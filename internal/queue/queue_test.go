package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/kvstore"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"github.com/spigell/cv-screener/internal/store/memory"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var longText = strings.Repeat("Senior Go developer with distributed systems experience. ", 3)

// stubExtractor returns the payload itself as text, or a configured error.
type stubExtractor struct {
	mu       sync.Mutex
	failures map[string]int
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubExtractor) Extract(_ context.Context, pdf []byte) (string, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxSeen.Load()
		if n <= peak || s.maxSeen.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[string(pdf)] > 0 {
		s.failures[string(pdf)]--
		return "", &pdftext.ExtractionError{Reason: pdftext.ReasonUnreadable, Err: errors.New("broken xref")}
	}
	return string(pdf), nil
}

type stubFields struct {
	calls atomic.Int32
}

func (s *stubFields) ExtractFields(_ context.Context, text string) (*ai.ContactFields, error) {
	s.calls.Add(1)
	name := "Ana Perez"
	return &ai.ContactFields{FullName: &name}, nil
}

type countingCache struct {
	invalidations atomic.Int32
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations.Add(1)
	return nil
}

type fixture struct {
	queue     *Queue
	list      *kvstore.MemoryList[Item]
	store     *memory.Store
	extractor *stubExtractor
	fields    *stubFields
	cache     *countingCache
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		list:      kvstore.NewMemoryList[Item](),
		store:     memory.New(),
		extractor: &stubExtractor{failures: map[string]int{}},
		fields:    &stubFields{},
		cache:     &countingCache{},
		logs:      logs,
	}
	f.queue = New(f.list, f.extractor, f.fields, f.store, f.cache, Config{}, zap.New(core))
	return f
}

// restart simulates a new process sharing the persisted list.
func (f *fixture) restart() {
	f.queue = New(f.list, f.extractor, f.fields, f.store, f.cache, Config{}, zap.NewNop())
}

func cv(name string) File {
	return File{Name: name, Data: []byte(name + ": " + longText)}
}

func statuses(t *testing.T, q *Queue) map[string]Item {
	t.Helper()

	items, err := q.Items(context.Background())
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	out := make(map[string]Item, len(items))
	for _, item := range items {
		out[item.FileName] = item
	}
	return out
}

func TestAddSkipsDuplicatesWithinSelection(t *testing.T) {
	f := newFixture(t)

	added, err := f.queue.Add(context.Background(), []File{cv("cv.pdf"), cv("cv.pdf")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("expected 1 item, got %d", len(added))
	}

	items, _ := f.queue.Items(context.Background())
	if len(items) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(items))
	}

	warnings := f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("file is already in the queue, skipping")
	if warnings.Len() != 1 {
		t.Fatalf("expected one duplicate warning, got %d", warnings.Len())
	}
	if got := warnings.All()[0].ContextMap()["file_name"]; got != "cv.pdf" {
		t.Fatalf("unexpected file name in warning: %v", got)
	}
}

func TestProcessDrainsQueueInWaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.store.CreateFolder(ctx, &recruiting.Folder{Name: "Inbox"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	folderID := folder.ID

	files := []File{cv("a.pdf"), cv("b.pdf"), cv("c.pdf"), cv("d.pdf"), cv("e.pdf")}
	if _, err := f.queue.Add(ctx, files); err != nil {
		t.Fatalf("add: %v", err)
	}

	report, err := f.queue.Process(ctx, &folderID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if report.Processed != 5 || report.Succeeded != 5 || len(report.Candidates) != 5 {
		t.Fatalf("unexpected report %+v", report)
	}
	if peak := f.extractor.maxSeen.Load(); peak > DefaultConcurrency {
		t.Fatalf("expected at most %d files in flight, saw %d", DefaultConcurrency, peak)
	}

	for name, item := range statuses(t, f.queue) {
		if item.Status != StatusSuccess {
			t.Fatalf("%s: expected success, got %s (%s)", name, item.Status, item.Error)
		}
		if item.CandidateID == nil {
			t.Fatalf("%s: expected candidate id", name)
		}
	}

	n, err := f.store.CountCandidates(ctx, store.FolderScope([]int64{folderID}))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 candidates in the folder, got %d", n)
	}

	c, _ := f.store.GetCandidate(ctx, report.Candidates[0])
	if !strings.HasPrefix(c.RawFileBase64, "data:application/pdf;base64,") {
		t.Fatalf("expected stored data URL, got %q", c.RawFileBase64)
	}
	if c.FullName == nil || *c.FullName != "Ana Perez" {
		t.Fatalf("expected extracted name, got %v", c.FullName)
	}

	if f.cache.invalidations.Load() != 1 {
		t.Fatalf("expected summary cache to be invalidated once, got %d", f.cache.invalidations.Load())
	}
	if len(f.queue.payloads) != 0 {
		t.Fatalf("expected payloads to be dropped after success")
	}
}

func TestProcessIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	broken := cv("broken.pdf")
	f.extractor.failures[string(broken.Data)] = 1
	short := File{Name: "short.pdf", Data: []byte("too short")}

	if _, err := f.queue.Add(ctx, []File{cv("ok.pdf"), broken, short}); err != nil {
		t.Fatalf("add: %v", err)
	}

	report, err := f.queue.Process(ctx, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	items := statuses(t, f.queue)
	if items["ok.pdf"].Status != StatusSuccess {
		t.Fatalf("expected ok.pdf to succeed, got %+v", items["ok.pdf"])
	}
	if items["broken.pdf"].Status != StatusError || !strings.Contains(items["broken.pdf"].Error, pdftext.ReasonUnreadable) {
		t.Fatalf("unexpected broken.pdf item %+v", items["broken.pdf"])
	}
	if items["short.pdf"].Status != StatusError || items["short.pdf"].Error != pdftext.ReasonEmpty {
		t.Fatalf("unexpected short.pdf item %+v", items["short.pdf"])
	}
	for name, item := range items {
		if item.Status == StatusProcessing {
			t.Fatalf("%s left processing", name)
		}
	}
}

func TestProcessRetriesFailedItemsOnNextRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flaky := cv("flaky.pdf")
	f.extractor.failures[string(flaky.Data)] = 1
	if _, err := f.queue.Add(ctx, []File{flaky}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := f.queue.Process(ctx, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if statuses(t, f.queue)["flaky.pdf"].Status != StatusError {
		t.Fatalf("expected first run to fail")
	}

	report, err := f.queue.Process(ctx, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("expected retry to succeed, got %+v", report)
	}

	calls := f.fields.calls.Load()
	report, err = f.queue.Process(ctx, nil)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if report.Processed != 0 || f.fields.calls.Load() != calls {
		t.Fatalf("expected an idle run without AI calls, got %+v", report)
	}
}

func TestRecoverAfterRestartAndReAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.list.Save(ctx, []Item{
		{ID: "1", FileName: "pending.pdf", Status: StatusPending},
		{ID: "2", FileName: "processing.pdf", Status: StatusProcessing},
		{ID: "3", FileName: "done.pdf", Status: StatusSuccess},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.restart()

	n, err := f.queue.Recover(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 recovered items, got %d", n)
	}

	items := statuses(t, f.queue)
	for _, name := range []string{"pending.pdf", "processing.pdf"} {
		if items[name].Status != StatusError || items[name].Error != MsgRestarted {
			t.Fatalf("%s: unexpected item %+v", name, items[name])
		}
	}

	added, err := f.queue.Add(ctx, []File{cv("pending.pdf"), cv("done.pdf")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added) != 1 || added[0].FileName != "pending.pdf" || added[0].ID == "1" {
		t.Fatalf("expected a fresh item for the lost file only, got %+v", added)
	}

	items = statuses(t, f.queue)
	if len(items) != 3 {
		t.Fatalf("expected the lost item to be replaced, got %d items", len(items))
	}
	if items["pending.pdf"].Status != StatusPending {
		t.Fatalf("expected re-added file to be pending, got %+v", items["pending.pdf"])
	}

	// A failed item that still holds its file is a duplicate.
	failing := cv("failing.pdf")
	f.extractor.failures[string(failing.Data)] = 1
	_, _ = f.queue.Add(ctx, []File{failing})
	_, _ = f.queue.Process(ctx, nil)
	added, _ = f.queue.Add(ctx, []File{failing})
	if len(added) != 0 {
		t.Fatalf("expected failed item with payload to be skipped, got %+v", added)
	}
}

func TestProcessRejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	f.queue.running.Store(true)

	_, err := f.queue.Process(context.Background(), nil)
	if !errors.Is(err, ErrAlreadyProcessing) {
		t.Fatalf("expected ErrAlreadyProcessing, got %v", err)
	}
}

func TestClearKeepsActiveItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.list.Save(ctx, []Item{
		{ID: "1", FileName: "a.pdf", Status: StatusPending},
		{ID: "2", FileName: "b.pdf", Status: StatusSuccess},
		{ID: "3", FileName: "c.pdf", Status: StatusError, Error: "boom"},
		{ID: "4", FileName: "d.pdf", Status: StatusProcessing},
	})

	removed, err := f.queue.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed items, got %d", removed)
	}

	items := statuses(t, f.queue)
	if _, ok := items["a.pdf"]; !ok {
		t.Fatalf("pending item removed")
	}
	if _, ok := items["d.pdf"]; !ok {
		t.Fatalf("processing item removed")
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items left, got %d", len(items))
	}
}

// ctxList rejects calls on a done context, the way a network-backed list does.
type ctxList struct {
	*kvstore.MemoryList[Item]
	failSuccess bool
}

func (l *ctxList) Load(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.MemoryList.Load(ctx)
}

func (l *ctxList) Save(ctx context.Context, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.failSuccess {
		for _, item := range items {
			if item.Status == StatusSuccess {
				return errors.New("connection reset")
			}
		}
	}
	return l.MemoryList.Save(ctx, items)
}

// cancellingExtractor cancels the run on its first call.
type cancellingExtractor struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (e *cancellingExtractor) Extract(_ context.Context, pdf []byte) (string, error) {
	e.once.Do(e.cancel)
	return string(pdf), nil
}

func TestProcessSettlesClaimedItemsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	list := &ctxList{MemoryList: kvstore.NewMemoryList[Item]()}
	extractor := &cancellingExtractor{cancel: cancel}
	q := New(list, extractor, &stubFields{}, memory.New(), nil, Config{Concurrency: 2}, zap.NewNop())

	files := []File{cv("a.pdf"), cv("b.pdf"), cv("c.pdf"), cv("d.pdf")}
	if _, err := q.Add(context.Background(), files); err != nil {
		t.Fatalf("add: %v", err)
	}

	report, err := q.Process(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("expected only the first wave to run, got %+v", report)
	}

	var pending int
	for name, item := range statuses(t, q) {
		switch item.Status {
		case StatusProcessing:
			t.Fatalf("%s left processing after Process returned", name)
		case StatusPending:
			pending++
		}
	}
	if pending != 2 {
		t.Fatalf("expected the unclaimed items to stay pending, got %d", pending)
	}
}

func TestFinishKeepsPayloadWhenSaveFails(t *testing.T) {
	ctx := context.Background()

	list := &ctxList{MemoryList: kvstore.NewMemoryList[Item](), failSuccess: true}
	q := New(list, &stubExtractor{failures: map[string]int{}}, &stubFields{}, memory.New(), nil, Config{}, zap.NewNop())

	added, err := q.Add(ctx, []File{cv("a.pdf")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := q.Process(ctx, nil); err != nil {
		t.Fatalf("process: %v", err)
	}

	item := statuses(t, q)["a.pdf"]
	if item.Status != StatusError {
		t.Fatalf("expected the unsaved outcome to be swept to error, got %+v", item)
	}
	if !q.hasPayload(added[0].ID) {
		t.Fatalf("expected the payload to survive a failed save")
	}

	again, err := q.Add(ctx, []File{cv("a.pdf")})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected the file to be a duplicate, got %+v", again)
	}
}
