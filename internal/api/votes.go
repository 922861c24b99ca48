package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"rollcall-backend/internal/snapshot"
	"rollcall-backend/internal/votes"

	"github.com/gin-gonic/gin"
)

type voteSummary struct {
	ID             int64           `json:"id"`
	Timestamp      string          `json:"timestamp"`
	DisplayTitle   string          `json:"display_title"`
	Description    *string         `json:"description"`
	Reference      *string         `json:"reference"`
	DocumentLink   string          `json:"document_link,omitempty"`
	GeoAreas       []votes.GeoArea `json:"geo_areas"`
	GeoAreaLabels  string          `json:"geo_area_labels"`
	Result         string          `json:"result"`
	Counts         votes.Tally     `json:"counts"`
	MemberPosition votes.Position  `json:"member_position,omitempty"`
}

type votePage struct {
	Items      []voteSummary `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	MemberID   int64         `json:"member_id,omitempty"`
	MemberCast int           `json:"member_cast_votes,omitempty"`
}

type voteDetail struct {
	votes.Record
	DocumentLink string          `json:"document_link,omitempty"`
	Counts       votes.Tally     `json:"counts"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

func summarize(item snapshot.Item) voteSummary {
	rec := item.Record
	return voteSummary{
		ID:             rec.ID,
		Timestamp:      rec.Timestamp,
		DisplayTitle:   rec.DisplayTitle,
		Description:    rec.Description,
		Reference:      rec.Reference,
		DocumentLink:   rec.DocumentLink(),
		GeoAreas:       rec.GeoAreas,
		GeoAreaLabels:  rec.GeoAreaLabels,
		Result:         rec.Result,
		Counts:         item.Counts,
		MemberPosition: item.MemberPosition,
	}
}

var errInvalidParam = errors.New("invalid parameter")

func intParam(c *gin.Context, name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errInvalidParam, name)
	}
	return n, nil
}

func (h handler) parseQuery(c *gin.Context) (snapshot.Query, error) {
	q := snapshot.Query{
		Title:   strings.TrimSpace(c.Query("title")),
		GeoArea: strings.TrimSpace(c.Query("geo_area")),
	}

	// unparseable dates are ignored
	if d, ok := snapshot.ParseDate(c.Query("start_date")); ok {
		q.From = &d
	}
	if d, ok := snapshot.ParseDate(c.Query("end_date")); ok {
		q.To = &d
	}

	memberId, err := intParam(c, "member_id", h.defaultMemberID)
	if err != nil {
		return q, err
	}
	q.MemberID = memberId

	page, err := intParam(c, "page", 1)
	if err != nil {
		return q, err
	}
	q.Page = int(page)

	pageSize, err := intParam(c, "page_size", int64(h.pageSize))
	if err != nil {
		return q, err
	}
	q.PageSize = int(pageSize)

	showAll, err := strconv.ParseBool(c.DefaultQuery("show_all", "false"))
	if err != nil {
		return q, fmt.Errorf("%w: show_all must be a boolean", errInvalidParam)
	}
	q.ShowAll = showAll

	return q, nil
}

func (h handler) listVotes(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}

	res := h.cache.Query(q)
	page := votePage{
		Items:      make([]voteSummary, len(res.Items)),
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
		MemberID:   q.MemberID,
		MemberCast: res.MemberCast,
	}
	for i, item := range res.Items {
		page.Items[i] = summarize(item)
	}
	RespondOK(c, page)
}

func pathId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("%w: id must be a positive integer", errInvalidParam))
		return 0, false
	}
	return id, true
}

func (h handler) getVote(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	rec, ok := h.cache.Vote(id)
	if !ok {
		RespondError(c, http.StatusNotFound, "vote_not_found", fmt.Errorf("vote %d not found", id))
		return
	}
	RespondOK(c, voteDetail{
		Record:       rec,
		DocumentLink: rec.DocumentLink(),
		Counts:       rec.BallotCounts(),
		Raw:          rec.Raw,
	})
}

type voteHit struct {
	ID           int64  `json:"id"`
	Timestamp    string `json:"timestamp"`
	DisplayTitle string `json:"display_title"`
}

func (h handler) searchVotes(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	hits := []voteHit{}
	if q == "" {
		RespondOK(c, hits)
		return
	}

	res := h.cache.Query(snapshot.Query{Title: q, ShowAll: true})
	for _, item := range res.Items {
		hits = append(hits, voteHit{
			ID:           item.Record.ID,
			Timestamp:    item.Record.Timestamp,
			DisplayTitle: item.Record.DisplayTitle,
		})
	}
	RespondOK(c, hits)
}

func (h handler) geoAreas(c *gin.Context) {
	areas := h.cache.GeoAreas()
	if areas == nil {
		areas = []votes.GeoArea{}
	}
	RespondOK(c, areas)
}
