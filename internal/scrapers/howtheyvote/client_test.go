package howtheyvote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rollcall-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const sampleVote = `{
	"id": "123456",
	"timestamp": "2024-03-01T10:00:00",
	"display_title": "Test",
	"description": "Proposition de résolution (ensemble du texte)",
	"reference": "A9-0100/2024",
	"geo_areas": [{"code": "DEU", "label": "Germany"}],
	"result": "ADOPTED",
	"stats": {"total": {"FOR": 5, "AGAINST": 2, "ABSTENTION": 1, "DID_NOT_VOTE": 0}},
	"member_votes": [{"member": {"id": 1, "last_name": "Smith", "group": {"short_label": "EPP"}}, "position": "FOR"}]
}`

func newTestClient(t *testing.T, handler http.Handler) (Client, *telemetry.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tel := &telemetry.Recorder{}
	client, err := NewClient(ClientOptions{
		BaseUrl:     server.URL,
		ListingSort: "newest",
		Timeout:     2 * time.Second,
		Retries:     2,
		RetryWait:   time.Millisecond,
	}, tel)
	require.NoError(t, err)
	return client, tel
}

func TestClientVote(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/votes/123456", r.URL.Path)
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(sampleVote))
	}))

	vote, raw, err := client.Vote(context.Background(), 123456)
	require.NoError(t, err)
	require.Equal(t, FlexInt(123456), vote.ID)
	require.Equal(t, "Test", vote.DisplayTitle)
	require.NotNil(t, vote.Stats.Total)
	require.Equal(t, int64(5), vote.Stats.Total.For)
	require.Len(t, vote.MemberVotes, 1)
	require.Equal(t, "EPP", vote.MemberVotes[0].Member.Group.ShortLabel)
	require.JSONEq(t, sampleVote, string(raw))
}

func TestClientVoteNotFound(t *testing.T) {
	var calls atomic.Int32
	client, tel := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, _, err := client.Vote(context.Background(), 999999)
	require.True(t, errors.Is(err, ErrNotFound))
	// a 404 is final, it is not retried
	require.Equal(t, int32(1), calls.Load())
	require.Len(t, tel.Reports("warning", report_client_get_vote), 1)
}

func TestClientVoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleVote))
	}))

	vote, _, err := client.Vote(context.Background(), 123456)
	require.NoError(t, err)
	require.Equal(t, FlexInt(123456), vote.ID)
	require.Equal(t, int32(3), calls.Load())
}

func TestClientVoteGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client, tel := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, _, err := client.Vote(context.Background(), 123456)
	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
	require.Equal(t, int32(3), calls.Load())
	require.Len(t, tel.Reports("broken", report_client_get_vote), 1)
}

func TestClientVoteRetriesDroppedConnection(t *testing.T) {
	var calls atomic.Int32
	client, tel := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(sampleVote))
	}))

	vote, _, err := client.Vote(context.Background(), 123456)
	require.NoError(t, err)
	require.Equal(t, FlexInt(123456), vote.ID)
	require.Equal(t, int32(2), calls.Load())
	// resty's retry warning goes through telemetry, not stderr
	require.NotEmpty(t, tel.Reports("warning", "resty.log"))
}

func TestClientVoteIdMismatch(t *testing.T) {
	client, tel := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleVote))
	}))

	_, _, err := client.Vote(context.Background(), 654321)
	require.ErrorIs(t, err, ErrIdMismatch)
	require.Len(t, tel.Reports("broken", report_client_get_vote), 1)
}

func TestClientVoteInvalidPayload(t *testing.T) {
	client, tel := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 0, "display_title": "broken"}`))
	}))

	_, _, err := client.Vote(context.Background(), 123456)
	require.Error(t, err)
	require.Len(t, tel.Reports("broken", report_client_get_vote), 1)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Timeout: 50 * time.Millisecond,
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	start := time.Now()
	_, _, err = client.Vote(context.Background(), 123456)
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestClientListingPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/votes", r.URL.Path)
		require.Equal(t, "newest", r.URL.Query().Get("sort"))
		if r.URL.Query().Get("page") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(listingPage(123456))
	}))

	body, err := client.ListingPage(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int64{123456}, ExtractIds(context.Background(), client.BaseUrl(), body))

	_, err = client.ListingPage(context.Background(), 2)
	require.Error(t, err)
}

func TestClientThrottle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleVote))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		BaseUrl:    server.URL,
		FetchDelay: 40 * time.Millisecond,
		Timeout:    time.Second,
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, _, err := client.Vote(context.Background(), 123456)
		require.NoError(t, err)
	}
	// the first request passes immediately, the next two wait for a token
	require.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestFlexInt(t *testing.T) {
	vote, err := DecodeVote([]byte(`{"id": 42}`))
	require.NoError(t, err)
	require.Equal(t, FlexInt(42), vote.ID)

	vote, err = DecodeVote([]byte(`{"id": " 43 "}`))
	require.NoError(t, err)
	require.Equal(t, FlexInt(43), vote.ID)

	_, err = DecodeVote([]byte(`{"id": "abc"}`))
	require.Error(t, err)

	_, err = DecodeVote([]byte(`{"id": null}`))
	require.Error(t, err)
}
