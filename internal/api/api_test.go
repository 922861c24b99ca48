package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/roster"
	"rollcall-backend/internal/snapshot"
	"rollcall-backend/internal/votes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type staticLoader []votes.Record

func (l staticLoader) LoadVotes(context.Context) ([]votes.Record, error) {
	return append([]votes.Record(nil), l...), nil
}

type staticRoster struct {
	members []roster.Member
	err     error
}

func (r staticRoster) Load(context.Context) ([]roster.Member, error) {
	return r.members, r.err
}

func fixture() []votes.Record {
	ref := "A9-0123/2024"
	desc := "Motions for resolutions"
	anna := votes.Member{ID: 256971, FirstName: "Anna", LastName: "Rossi", DateOfBirth: "1980-06-20", Group: votes.Group{Code: "SD", ShortLabel: "S&D"}}
	jan := votes.Member{ID: 2, FirstName: "Jan", LastName: "de Vries", Group: votes.Group{Code: "EPP", ShortLabel: "EPP"}}

	return []votes.Record{
		{
			ID:            100001,
			Timestamp:     "2024-03-01T10:00:00",
			Time:          votes.ParseTimestamp("2024-03-01T10:00:00"),
			DisplayTitle:  "Ukraine support",
			Description:   &desc,
			Reference:     &ref,
			GeoAreas:      []votes.GeoArea{{Code: "UKR", Label: "Ukraine"}},
			GeoAreaLabels: "Ukraine",
			Result:        "ADOPTED",
			Ballots: []votes.Ballot{
				{Member: anna, Position: votes.For},
				{Member: jan, Position: votes.Against},
			},
			Raw: json.RawMessage(`{"id":100001}`),
		},
		{
			ID:           100002,
			Timestamp:    "2024-04-10T12:00:00",
			Time:         votes.ParseTimestamp("2024-04-10T12:00:00"),
			DisplayTitle: "Budget discharge",
			Result:       "REJECTED",
			Ballots: []votes.Ballot{
				{Member: jan, Position: votes.For},
			},
			Raw: json.RawMessage(`{"id":100002}`),
		},
	}
}

func newTestRouter(t *testing.T, r RosterSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tel := &telemetry.Recorder{}
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, chrono.Brussels())
	cache := snapshot.NewCache(staticLoader(fixture()), chrono.FixedTime{At: now}, tel)
	require.NoError(t, cache.Load(context.Background()))

	return NewRouter(RouterConfig{
		Cache:           cache,
		Roster:          r,
		PageSize:        20,
		DefaultMemberID: 256971,
		Tel:             tel,
	})
}

func get(t *testing.T, router *gin.Engine, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(t, nil)

	var body map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/healthcheck", &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, float64(2), body["votes"])
}

func TestListVotes(t *testing.T) {
	router := newTestRouter(t, nil)

	var page votePage
	require.Equal(t, http.StatusOK, get(t, router, "/api/votes", &page))
	require.Equal(t, 2, page.Total)
	require.Equal(t, int64(100002), page.Items[0].ID)
	// the default member is annotated when none is given
	require.Equal(t, int64(256971), page.MemberID)
	require.Equal(t, votes.DidNotVote, page.Items[0].MemberPosition)
	require.Equal(t, votes.For, page.Items[1].MemberPosition)
	require.Equal(t, 1, page.MemberCast)
	require.Equal(t, "https://www.europarl.europa.eu/doceo/document/A-9-2024-0123_EN.html", page.Items[1].DocumentLink)
	require.Equal(t, votes.Tally{For: 1, Against: 1}, page.Items[1].Counts)

	page = votePage{}
	require.Equal(t, http.StatusOK, get(t, router, "/api/votes?geo_area=UKR&member_id=2", &page))
	require.Len(t, page.Items, 1)
	require.Equal(t, votes.Against, page.Items[0].MemberPosition)

	page = votePage{}
	require.Equal(t, http.StatusOK, get(t, router, "/api/votes?start_date=01.04.2024&end_date=not-a-date", &page))
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(100002), page.Items[0].ID)

	page = votePage{}
	require.Equal(t, http.StatusOK, get(t, router, "/api/votes?page_size=1&page=2", &page))
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, int64(100001), page.Items[0].ID)

	var apiErr ErrorEnvelope
	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/votes?page=abc", &apiErr))
	require.Equal(t, "invalid_query", apiErr.Error.Code)
}

func TestGetVote(t *testing.T) {
	router := newTestRouter(t, nil)

	var detail map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/votes/100001", &detail))
	require.Equal(t, "Ukraine support", detail["display_title"])
	require.Equal(t, "Motions for resolutions", detail["description"])
	require.Equal(t, map[string]any{"id": float64(100001)}, detail["raw"])
	require.Len(t, detail["member_votes"], 2)

	var apiErr ErrorEnvelope
	require.Equal(t, http.StatusNotFound, get(t, router, "/api/votes/999999", &apiErr))
	require.Equal(t, "vote_not_found", apiErr.Error.Code)
	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/votes/abc", &apiErr))
}

func TestSearchVotes(t *testing.T) {
	router := newTestRouter(t, nil)

	var hits []voteHit
	require.Equal(t, http.StatusOK, get(t, router, "/api/search/votes?q=budget", &hits))
	require.Equal(t, []voteHit{{ID: 100002, Timestamp: "2024-04-10T12:00:00", DisplayTitle: "Budget discharge"}}, hits)

	hits = nil
	require.Equal(t, http.StatusOK, get(t, router, "/api/search/votes?q=", &hits))
	require.Empty(t, hits)
}

func TestMembers(t *testing.T) {
	router := newTestRouter(t, staticRoster{members: []roster.Member{
		{ID: 256971, FullName: "Anna ROSSI", PoliticalGroup: "S&D"},
	}})

	var members []map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/members", &members))
	require.Len(t, members, 2)
	require.Equal(t, "de Vries", members[0]["last_name"])
	require.Equal(t, false, members[0]["in_office"])
	require.Equal(t, "EPP", members[0]["faction"])
	require.Equal(t, true, members[1]["in_office"])
	require.Equal(t, "S&D", members[1]["current_group"])

	var detail map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/members/256971", &detail))
	require.Equal(t, float64(1), detail["cast_votes"])
	require.Equal(t, float64(44), detail["age"])
	require.Equal(t, map[string]any{
		"for": float64(1), "against": float64(0), "abstention": float64(0), "did_not_vote": float64(1),
	}, detail["positions"])

	var apiErr ErrorEnvelope
	require.Equal(t, http.StatusNotFound, get(t, router, "/api/members/7", &apiErr))
	require.Equal(t, "member_not_found", apiErr.Error.Code)

	var found []map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/search/members?last_name=ROSSI", &found))
	require.Len(t, found, 1)
	require.Equal(t, float64(256971), found[0]["id"])
}

func TestMembersWithBrokenRoster(t *testing.T) {
	router := newTestRouter(t, staticRoster{err: errors.New("europarl is down")})

	var members []map[string]any
	require.Equal(t, http.StatusOK, get(t, router, "/api/members", &members))
	require.Len(t, members, 2)
	require.NotContains(t, members[0], "in_office")

	var apiErr ErrorEnvelope
	require.Equal(t, http.StatusBadGateway, get(t, router, "/api/roster", &apiErr))
	require.Equal(t, "roster_unavailable", apiErr.Error.Code)
}

func TestRoster(t *testing.T) {
	var apiErr ErrorEnvelope
	require.Equal(t, http.StatusNotFound, get(t, newTestRouter(t, nil), "/api/roster", &apiErr))

	router := newTestRouter(t, staticRoster{members: []roster.Member{{ID: 1, FullName: "X"}}})
	var members []roster.Member
	require.Equal(t, http.StatusOK, get(t, router, "/api/roster", &members))
	require.Equal(t, []roster.Member{{ID: 1, FullName: "X"}}, members)
}

func TestGeoAreas(t *testing.T) {
	router := newTestRouter(t, nil)

	var areas []votes.GeoArea
	require.Equal(t, http.StatusOK, get(t, router, "/api/geo-areas", &areas))
	require.Equal(t, []votes.GeoArea{{Code: "UKR", Label: "Ukraine"}}, areas)
}
