package docsync

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/library"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/projection"
	"github.com/agentstation/docsync/pkg/remote"
	"github.com/agentstation/docsync/pkg/summarize"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)

const seed = `[
	{"rowNumber": 1, "Document Title": "Palletizing Basics", "Link (EN)": "https://tm.example/pallet", "Main Category": "ADVANCED FEATURES", "Sub Category": "TM palletizing", "LinkedIn": "yes", "Date": "2024-1-2", "Hashtags": "#palletizing; #cobot"},
	{"rowNumber": 2, "Document Title": "Vision Setup", "Link (EN)": "https://tm.example/vision", "Slug (EN)": "vision-setup", "Main Category": "TM AI VISION", "LinkedIn": "No", "Date": "2024/02/10"},
	{"rowNumber": 1, "Document Title": "Palletizing Duplicate"}
]`

// countingStore wraps a MemoryStore and counts fetches.
type countingStore struct {
	*remote.MemoryStore
	fetches atomic.Int32
}

func (s *countingStore) Fetch(ctx context.Context) ([]articles.RawRow, error) {
	s.fetches.Add(1)
	return s.MemoryStore.Fetch(ctx)
}

func newStore(t *testing.T, body string) *countingStore {
	t.Helper()
	rows, err := articles.ParseRows([]byte(body))
	require.NoError(t, err)
	return &countingStore{MemoryStore: remote.NewMemoryStore(rows...)}
}

func newClient(t *testing.T, store remote.Store, opts ...Option) *client {
	t.Helper()
	logging.DisableLoggingForTest(t)
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithStatusDelays(0, 0, 0),
	}
	c, err := New(store, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.(*client)
}

func draft(kv ...any) articles.Record {
	return articles.Record{RawRow: articles.NewRawRow(kv...)}
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(remote.NewMemoryStore(), WithRequestTimeout(0))
	assert.True(t, errors.IsValidationError(err))
}

func TestInitialSnapshot(t *testing.T) {
	c := newClient(t, remote.NewMemoryStore(), WithLibrary(library.NewMemoryStore("#custom", "not-a-tag")))

	snap := c.Snapshot()
	assert.Empty(t, snap.Records)
	assert.Equal(t, "Document Title", snap.Columns.Name(articles.Title))
	assert.Contains(t, snap.Hashtags, "#custom")
	assert.NotContains(t, snap.Hashtags, "not-a-tag")
	assert.Equal(t, StatusIdle, c.Status().Status)
}

func TestRefresh(t *testing.T) {
	store := newStore(t, seed)
	lib := library.NewMemoryStore()
	c := newClient(t, store, WithLibrary(lib))

	require.NoError(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Records, 2)
	assert.Equal(t, fixedNow, snap.FetchedAt)

	pallet, ok := snap.Find("row-1")
	require.True(t, ok)
	assert.Equal(t, "Palletizing Basics", pallet.Lookup(articles.Title), "first row wins")
	assert.Equal(t, "2024-01-02", pallet.Text("Date"))
	assert.Equal(t, "Yes", pallet.Text("LinkedIn"))

	assert.Equal(t, "ADVANCED FEATURES", snap.Records[0].Lookup(articles.MainCategory), "sorted by category")
	assert.NotContains(t, snap.Headers, "rowNumber")
	assert.Contains(t, snap.Headers, "Slug (EN)")
	assert.Contains(t, snap.Hashtags, "#cobot")
	assert.True(t, snap.Categories.Has("TM AI VISION"))

	saved, err := lib.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Hashtags, saved, "hashtag vocabulary is written through")
	assert.Equal(t, StatusIdle, c.Status().Status)
}

func TestRefreshIgnoresBrokenLibrary(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/hashtags.json"
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := newClient(t, newStore(t, seed), WithLibrary(library.NewFileStore(path)))
	require.NoError(t, c.Refresh(context.Background()))
	assert.Contains(t, c.Snapshot().Hashtags, "#vision")

	saved, err := library.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot().Hashtags, saved, "corrupt library is replaced")
}

func TestRefreshErrorKeepsSnapshot(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store, WithStatusDelays(0, time.Hour, time.Hour))
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Snapshot()

	store.FetchErr = errors.NewTransportError("fetch", "mem", 503, nil)
	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))

	assert.Same(t, before, c.Snapshot(), "last good snapshot stays published")
	info := c.Status()
	assert.Equal(t, StatusError, info.Status)
	assert.Contains(t, info.LastError, "503")
}

func TestStatusTransitions(t *testing.T) {
	c := newClient(t, newStore(t, seed))

	var mu sync.Mutex
	var seen []Status
	c.OnStatusChange(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	require.NoError(t, c.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusSyncing, StatusSuccess, StatusIdle}, seen)
}

func TestStatusReturnsToIdleAfterDelay(t *testing.T) {
	store := newStore(t, seed)
	store.FetchErr = errors.New("boom")
	c := newClient(t, store, WithStatusDelays(10*time.Millisecond, 20*time.Millisecond, 10*time.Millisecond))

	require.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, StatusError, c.Status().Status)
	assert.Eventually(t, func() bool {
		return c.Status().Status == StatusIdle
	}, time.Second, 5*time.Millisecond)
}

// blockingStore blocks fetches until release is closed or the context ends.
type blockingStore struct {
	*remote.MemoryStore
	started chan struct{}
	release chan struct{}
	fetches atomic.Int32
	once    sync.Once
}

func (s *blockingStore) Fetch(ctx context.Context) ([]articles.RawRow, error) {
	s.fetches.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return s.MemoryStore.Fetch(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRefreshTimeout(t *testing.T) {
	store := &blockingStore{
		MemoryStore: remote.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	c := newClient(t, store, WithRequestTimeout(20*time.Millisecond), WithStatusDelays(0, time.Hour, time.Hour))

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Equal(t, StatusError, c.Status().Status, "a stalled store cannot wedge the engine in syncing")
}

func TestRefreshSingleFlight(t *testing.T) {
	store := &blockingStore{
		MemoryStore: remote.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	c := newClient(t, store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = c.Refresh(context.Background())
	}()
	<-store.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = c.Refresh(context.Background())
	}()
	time.Sleep(100 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, int32(1), store.fetches.Load(), "the second caller joins the in-flight refresh")
}

func TestRefreshCanceledCallerLeavesJoinedCaller(t *testing.T) {
	store := &blockingStore{
		MemoryStore: remote.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	c := newClient(t, store, WithStatusDelays(time.Hour, time.Hour, time.Hour))

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() { leaderErr <- c.Refresh(leaderCtx) }()
	<-store.started

	followerErr := make(chan error, 1)
	go func() { followerErr <- c.Refresh(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	err := <-leaderErr
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))

	close(store.release)
	assert.NoError(t, <-followerErr)
	assert.Equal(t, StatusSuccess, c.Status().Status)
	assert.Equal(t, int32(1), store.fetches.Load())
}

func TestCreate(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))

	rec := draft("Document Title", "Welding Guide", "Link (EN)", "https://tm.example/weld", "Main Category", "ADVANCED FEATURES")
	require.NoError(t, c.Create(context.Background(), rec))

	writes := store.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, remote.ActionCreate, writes[0].Action)
	assert.False(t, writes[0].Payload.Has("rowNumber"))

	assert.Equal(t, int32(2), store.fetches.Load(), "create is followed by a refetch")
	found := c.Filter(projection.Filter{Term: "welding guide"})
	require.Len(t, found, 1)
	assert.Equal(t, "row-3", found[0].IdentityKey)
}

func TestCreateLinkConflictNeverReachesNetwork(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Snapshot()

	var statuses []Status
	c.OnStatusChange(func(s Status) { statuses = append(statuses, s) })

	rec := draft("Document Title", "Another Title", "Link (EN)", "  HTTPS://TM.EXAMPLE/VISION ")
	err := c.Create(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.True(t, errors.IsValidationError(err))

	assert.Empty(t, store.Writes())
	assert.Equal(t, int32(1), store.fetches.Load())
	assert.Same(t, before, c.Snapshot())
	assert.Empty(t, statuses, "validation failures change no state")
}

func TestCreateRequiresTitle(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)

	err := c.Create(context.Background(), draft("Document Title", "  ", "Link (EN)", "https://new"))
	assert.True(t, errors.IsValidationError(err))
	assert.False(t, errors.IsConflict(err))
	assert.Empty(t, store.Writes())
}

func TestUpdate(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))

	rec, ok := c.Snapshot().Find("row-2")
	require.True(t, ok)
	rec = rec.Clone()
	rec.Set("Article Summary", "Calibrating the camera")
	require.NoError(t, c.Update(context.Background(), rec))

	writes := store.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, remote.ActionUpdate, writes[0].Action)
	assert.Equal(t, "2", writes[0].Payload.Text("rowNumber"))
	assert.False(t, writes[0].Payload.Has("displayDate"))

	updated, ok := c.Snapshot().Find("row-2")
	require.True(t, ok)
	assert.Equal(t, "Calibrating the camera", updated.Text("Article Summary"))
}

func TestUpdateKeepsOwnValuesWithoutConflict(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))

	rec, _ := c.Snapshot().Find("row-2")
	assert.NoError(t, c.Update(context.Background(), rec), "a record never conflicts with itself")
}

func TestUpdateRequiresRowNumber(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)

	err := c.Update(context.Background(), draft("Document Title", "Unsaved"))
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, store.Writes())
}

func TestDelete(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Delete(context.Background(), "row-2"))

	writes := store.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, remote.ActionDelete, writes[0].Action)
	assert.Equal(t, []string{"rowNumber"}, writes[0].Payload.Keys())

	_, ok := c.Snapshot().Find("row-2")
	assert.False(t, ok)

	err := c.Delete(context.Background(), "row-99")
	assert.True(t, errors.IsNotFound(err))
}

func TestWriteFailureStillRefetches(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store, WithStatusDelays(0, time.Hour, time.Hour))
	require.NoError(t, c.Refresh(context.Background()))

	store.WriteErr = errors.NewTransportError("delete", "mem", 500, nil)
	err := c.Delete(context.Background(), "row-2")
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))

	assert.Equal(t, int32(2), store.fetches.Load(), "refetch runs after a failed write")
	assert.Equal(t, StatusError, c.Status().Status)
}

func TestToggleLinkedIn(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.ToggleLinkedIn(context.Background(), "row-1"))
	rec, _ := c.Snapshot().Find("row-1")
	assert.Equal(t, "No", rec.Text("LinkedIn"))

	require.NoError(t, c.ToggleLinkedIn(context.Background(), "row-1"))
	rec, _ = c.Snapshot().Find("row-1")
	assert.Equal(t, "Yes", rec.Text("LinkedIn"))
}

func TestRecordHooks(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store)

	var added, updated, removed []string
	c.OnRecordAdded(func(r articles.Record) { added = append(added, r.IdentityKey) })
	c.OnRecordUpdated(func(_, r articles.Record) { updated = append(updated, r.IdentityKey) })
	c.OnRecordRemoved(func(r articles.Record) { removed = append(removed, r.IdentityKey) })

	require.NoError(t, c.Refresh(context.Background()))
	assert.ElementsMatch(t, []string{"row-1", "row-2"}, added)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, updated, "an unchanged refresh reports no updates")

	require.NoError(t, c.ToggleLinkedIn(context.Background(), "row-2"))
	assert.Equal(t, []string{"row-2"}, updated)

	require.NoError(t, c.Delete(context.Background(), "row-2"))
	assert.Equal(t, []string{"row-2"}, removed)
}

func TestHooksThroughClientInterface(t *testing.T) {
	var cl Client = newClient(t, newStore(t, seed))

	var mu sync.Mutex
	var added int
	var statuses []Status
	cl.OnRecordAdded(func(articles.Record) { added++ })
	cl.OnStatusChange(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s)
	})

	require.NoError(t, cl.Refresh(context.Background()))
	assert.Equal(t, 2, added)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, StatusSyncing)
}

func TestLibraryTags(t *testing.T) {
	lib := library.NewMemoryStore()
	c := newClient(t, newStore(t, seed), WithLibrary(lib))
	require.NoError(t, c.Refresh(context.Background()))

	tags, err := c.AddLibraryTag(context.Background(), "Modbus")
	require.NoError(t, err)
	assert.Contains(t, tags, "#Modbus")
	assert.Contains(t, c.Snapshot().Hashtags, "#Modbus")

	saved, _ := lib.Load(context.Background())
	assert.Contains(t, saved, "#Modbus")

	tags, err = c.RemoveLibraryTag(context.Background(), "#Modbus")
	require.NoError(t, err)
	assert.NotContains(t, tags, "#Modbus")
	saved, _ = lib.Load(context.Background())
	assert.NotContains(t, saved, "#Modbus")

	_, err = c.RemoveLibraryTag(context.Background(), "#Modbus")
	assert.True(t, errors.IsNotFound(err))

	_, err = c.AddLibraryTag(context.Background(), " # ")
	assert.True(t, errors.IsValidationError(err))
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(context.Context, string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeSummarizer) Suggest(_ context.Context, snippet string, _ *vocabulary.Categories) (*summarize.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &summarize.Suggestion{Title: strings.ToUpper(snippet)}, nil
}

func TestAutoSummary(t *testing.T) {
	fake := &fakeSummarizer{summary: "A short hook."}
	c := newClient(t, remote.NewMemoryStore(), WithSummarizer(fake))

	rec := draft("Document Title", "T", "Link (EN)", "https://tm.example/a", "Article Summary", "")
	out := c.AutoSummary(context.Background(), rec)
	assert.Equal(t, "A short hook.", out.Text("Article Summary"))
	assert.Equal(t, "", rec.Text("Article Summary"), "input is not modified")

	filled := draft("Link (EN)", "https://tm.example/a", "Article Summary", "Mine")
	assert.Equal(t, "Mine", c.AutoSummary(context.Background(), filled).Text("Article Summary"))

	notURL := draft("Link (EN)", "internal wiki")
	assert.Equal(t, "", c.AutoSummary(context.Background(), notURL).Text("Article Summary"))
	assert.Equal(t, 1, fake.calls)

	fake.err = errors.New("quota")
	assert.Equal(t, "", c.AutoSummary(context.Background(), rec).Text("Article Summary"), "failures are swallowed")
}

func TestSuggest(t *testing.T) {
	fake := &fakeSummarizer{}
	c := newClient(t, remote.NewMemoryStore(), WithSummarizer(fake))

	s := c.Suggest(context.Background(), "modbus")
	require.NotNil(t, s)
	assert.Equal(t, "MODBUS", s.Title)

	fake.err = errors.New("down")
	assert.Nil(t, c.Suggest(context.Background(), "modbus"))
	assert.Nil(t, c.Suggest(context.Background(), " "))
}

func TestExport(t *testing.T) {
	c := newClient(t, newStore(t, seed), WithCatalogName("TM_Articles"))
	require.NoError(t, c.Refresh(context.Background()))

	dir := t.TempDir()
	path, err := c.Export(dir, projection.Filter{Category: "TM AI VISION"})
	require.NoError(t, err)
	assert.Equal(t, dir+"/TM_Articles_Filtered_2024-06-01.csv", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), projection.BOM))
	assert.Contains(t, string(data), "Vision Setup")
	assert.NotContains(t, string(data), "Palletizing Basics")
	assert.Equal(t, c.CSV(projection.Filter{Category: "TM AI VISION"}), string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")

	_, err = c.Export(dir, projection.Filter{Term: "nothing matches this"})
	assert.True(t, errors.IsValidationError(err))
}

func TestStatsAndConflict(t *testing.T) {
	c := newClient(t, newStore(t, seed))
	require.NoError(t, c.Refresh(context.Background()))

	stats := c.Stats(projection.Filter{}, 0)
	assert.Equal(t, 2, stats.Total)

	found, ok := c.Conflict(draft("Slug (EN)", "Vision-Setup"), "")
	require.True(t, ok)
	assert.Equal(t, "row-2", found.Existing.IdentityKey)

	_, ok = c.Conflict(draft("Slug (EN)", "vision-setup"), "row-2")
	assert.False(t, ok)
}

func TestAutoRefresh(t *testing.T) {
	store := newStore(t, seed)
	c := newClient(t, store, WithAutoRefreshInterval(10*time.Millisecond))

	require.NoError(t, c.AutoRefreshOn())
	assert.Eventually(t, func() bool { return store.fetches.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.AutoRefreshOff())
	require.NoError(t, c.AutoRefreshOff(), "stopping twice is safe")

	c2 := newClient(t, store, WithAutoRefreshInterval(0))
	assert.True(t, errors.IsValidationError(c2.AutoRefreshOn()))
}
