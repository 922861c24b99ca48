package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/scrapers/howtheyvote"
	"rollcall-backend/internal/store"
	"rollcall-backend/pkg/migrations"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, chrono.Brussels())

func voteJson(id int64) string {
	return fmt.Sprintf(`{
		"id": %d,
		"timestamp": "2024-03-01T10:00:00",
		"display_title": "Vote %d",
		"geo_areas": [],
		"result": "ADOPTED",
		"stats": {"total": {"FOR": 1, "AGAINST": 0, "ABSTENTION": 0, "DID_NOT_VOTE": 0}},
		"member_votes": [{"member": {"id": 1, "last_name": "Smith", "group": {"code": "EPP", "short_label": "EPP"}}, "position": "FOR"}]
	}`, id, id)
}

func listing(ids ...int64) []byte {
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, `<a href="/votes/%06d">vote</a>`, id)
	}
	return []byte("<html><body>" + b.String() + "</body></html>")
}

type fakeSource struct {
	pages   map[int][]byte
	records map[int64]string
	errs    map[int64]error
	fetched []int64
	// cancel is called after fetching the record with this id
	cancelAfter int64
	cancel      context.CancelFunc
}

func (f *fakeSource) BaseUrl() *url.URL {
	u, _ := url.Parse("https://howtheyvote.eu")
	return u
}

func (f *fakeSource) ListingPage(_ context.Context, page int) ([]byte, error) {
	body, ok := f.pages[page]
	if !ok {
		return nil, howtheyvote.StatusError{Url: "/votes", Status: 404}
	}
	return body, nil
}

func (f *fakeSource) Vote(_ context.Context, id int64) (howtheyvote.Vote, []byte, error) {
	f.fetched = append(f.fetched, id)
	if f.cancel != nil && id == f.cancelAfter {
		f.cancel()
	}
	if err, ok := f.errs[id]; ok {
		return howtheyvote.Vote{}, nil, err
	}
	raw, ok := f.records[id]
	if !ok {
		return howtheyvote.Vote{}, nil, fmt.Errorf("vote %d: %w", id, howtheyvote.ErrNotFound)
	}
	vote, err := howtheyvote.DecodeVote([]byte(raw))
	if err != nil {
		return howtheyvote.Vote{}, nil, err
	}
	return vote, []byte(raw), nil
}

func newSource(ids ...int64) *fakeSource {
	src := &fakeSource{
		pages:   map[int][]byte{},
		records: map[int64]string{},
		errs:    map[int64]error{},
	}
	// two ids per page
	for i := 0; i < len(ids); i += 2 {
		end := min(i+2, len(ids))
		src.pages[i/2+1] = listing(ids[i:end]...)
	}
	for _, id := range ids {
		src.records[id] = voteJson(id)
	}
	return src
}

func openStore(t *testing.T) store.Store {
	t.Helper()
	sqldb, err := migrations.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	s, err := store.Open(context.Background(), sqldb, store.Options{}, chrono.FixedTime{At: testNow}, &telemetry.Recorder{})
	require.NoError(t, err)
	return s
}

func newPipeline(src Source, s Store, tel telemetry.API) Pipeline {
	return NewPipeline(src, s, Options{MaxPages: 69}, chrono.FixedTime{At: testNow}, tel)
}

func TestRunIngestsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	src := newSource(100005, 100004, 100003, 100002, 100001)

	report := newPipeline(src, s, &telemetry.Recorder{}).Run(ctx)
	require.Equal(t, 5, report.Discovered)
	require.Equal(t, 5, report.Ingested)
	require.Equal(t, 0, report.Failed)
	require.False(t, report.Interrupted)
	require.NotEmpty(t, report.RunID)
	// ascending by default
	require.Equal(t, []int64{100001, 100002, 100003, 100004, 100005}, src.fetched)

	count, err := s.CountVotes(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	// nothing new on the first page, discovery stops right away
	src.fetched = nil
	report = newPipeline(src, s, &telemetry.Recorder{}).Run(ctx)
	require.Equal(t, 0, report.Discovered)
	require.Equal(t, 0, report.Ingested)
	require.Empty(t, src.fetched)

	count, err = s.CountVotes(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestRunPicksUpNewRecords(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	src := newSource(100002, 100001)
	newPipeline(src, s, &telemetry.Recorder{}).Run(ctx)

	// two new votes show up at the top of the listing
	src = newSource(100004, 100003, 100002, 100001)
	report := newPipeline(src, s, &telemetry.Recorder{}).Run(ctx)
	require.Equal(t, 2, report.Discovered)
	require.Equal(t, 2, report.Ingested)
	require.Equal(t, []int64{100003, 100004}, src.fetched)
}

func TestRunAbsorbsFailures(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	tel := &telemetry.Recorder{}

	src := newSource(100004, 100003, 100002, 100001)
	delete(src.records, 100002)
	src.errs[100003] = howtheyvote.StatusError{Url: "/api/votes/100003", Status: 500}

	report := newPipeline(src, s, tel).Run(ctx)
	require.Equal(t, 4, report.Discovered)
	require.Equal(t, 2, report.Ingested)
	require.Equal(t, 2, report.Failed)
	require.Len(t, tel.Reports("warning", report_fetch_vote), 1)

	// failed ids are not stored, so the next run retries them
	src.errs = map[int64]error{}
	src.records[100002] = voteJson(100002)
	src.fetched = nil
	report = newPipeline(src, s, tel).Run(ctx)
	require.Equal(t, 2, report.Ingested)
	require.Equal(t, []int64{100002, 100003}, src.fetched)
}

func TestRunSkipsAlreadyStored(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	src := newSource(100001)
	vote, raw, err := src.Vote(ctx, 100001)
	require.NoError(t, err)
	require.Equal(t, howtheyvote.FlexInt(100001), vote.ID)
	require.NotEmpty(t, raw)

	// the store knows nothing when ids are listed but has the row by insert time
	known := &racingStore{Store: s}
	newPipeline(src, known, &telemetry.Recorder{}).Run(ctx)
	report := newPipeline(src, known, &telemetry.Recorder{}).Run(ctx)
	require.Equal(t, 1, report.Discovered)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, report.Ingested)
}

// racingStore hides every stored id from discovery, like a second writer
// that inserted between discovery and insert would.
type racingStore struct {
	store.Store
}

func (racingStore) KnownVoteIds(context.Context) (map[int64]struct{}, error) {
	return map[int64]struct{}{}, nil
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := openStore(t)

	src := newSource(100003, 100002, 100001)
	src.cancelAfter = 100001
	src.cancel = cancel

	report := newPipeline(src, s, &telemetry.Recorder{}).Run(ctx)
	require.True(t, report.Interrupted)
	require.Equal(t, 1, report.Ingested)
	require.Equal(t, []int64{100001}, src.fetched)

	// the ledger entry is finished even though the context is gone
	runs, err := s.Runs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].Interrupted)
	require.NotNil(t, runs[0].FinishedAt)
}

func TestRunAgainstHttpSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/votes", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write(listing(123456, 123455))
		case "2":
			w.Write(listing(123454))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/api/votes/", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		_, err := fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/api/votes/"), "%d", &id)
		if err != nil || id == 123455 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(voteJson(id)))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tel := &telemetry.Recorder{}
	client, err := howtheyvote.NewClient(howtheyvote.ClientOptions{
		BaseUrl:    server.URL,
		FetchDelay: time.Millisecond,
		Timeout:    2 * time.Second,
	}, tel)
	require.NoError(t, err)

	ctx := context.Background()
	s := openStore(t)
	pipeline := NewPipeline(client, s, Options{MaxPages: 69, Order: howtheyvote.Descending}, chrono.FixedTime{At: testNow}, tel)

	report := pipeline.Run(ctx)
	require.Equal(t, 3, report.Discovered)
	require.Equal(t, 2, report.Ingested)
	require.Equal(t, 1, report.Failed)

	loaded, err := s.LoadVotes(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, int64(123454), loaded[0].ID)
	require.Equal(t, int64(123456), loaded[1].ID)
}
