package snapshot

import (
	"strings"
	"time"

	"rollcall-backend/internal/votes"
)

const DefaultPageSize = 20

// Query filters and pages the cached records. Zero values disable a filter.
type Query struct {
	// Title matches a case-insensitive substring of the display title.
	Title string
	// GeoArea matches the code of one of the record's geographic areas.
	GeoArea string
	// From and To bound the record's date inclusively, the time of day is
	// ignored.
	From *time.Time
	To   *time.Time
	// MemberID annotates every item with that member's position, it does not
	// filter records.
	MemberID int64

	Page     int
	PageSize int
	ShowAll  bool
}

type Item struct {
	Record votes.Record
	// Counts are the ballot positions on this record.
	Counts votes.Tally
	// MemberPosition is only set when the query has a MemberID.
	MemberPosition votes.Position
}

type Result struct {
	Items      []Item
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	// MemberCast is the number of matching records the queried member cast a
	// for, against or abstention vote on.
	MemberCast int
}

func (q Query) matches(rec votes.Record) bool {
	if q.Title != "" &&
		!strings.Contains(strings.ToLower(rec.DisplayTitle), strings.ToLower(q.Title)) {
		return false
	}

	if q.GeoArea != "" {
		found := false
		for _, area := range rec.GeoAreas {
			if strings.EqualFold(area.Code, q.GeoArea) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.From != nil || q.To != nil {
		if rec.Time.IsZero() {
			return false
		}
		// dates in YYYY-MM-DD compare correctly as strings
		date := rec.Time.Format(time.DateOnly)
		if q.From != nil && date < q.From.Format(time.DateOnly) {
			return false
		}
		if q.To != nil && date > q.To.Format(time.DateOnly) {
			return false
		}
	}

	return true
}

// Query returns the matching records newest first, sliced to the requested
// page. Pages start at 1 and are clamped to the available range.
func (c *Cache) Query(q Query) Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []votes.Record
	for _, rec := range c.records {
		if q.matches(rec) {
			matched = append(matched, rec)
		}
	}

	res := Result{Total: len(matched), Items: []Item{}}
	if q.MemberID != 0 {
		for _, rec := range matched {
			if rec.PositionOf(q.MemberID).Cast() {
				res.MemberCast++
			}
		}
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	window := matched
	if q.ShowAll {
		res.Page = 1
		res.PageSize = len(matched)
		res.TotalPages = 1
	} else {
		res.PageSize = pageSize
		res.TotalPages = (len(matched) + pageSize - 1) / pageSize
		if res.TotalPages == 0 {
			res.TotalPages = 1
		}
		res.Page = min(max(q.Page, 1), res.TotalPages)

		start := (res.Page - 1) * pageSize
		end := min(start+pageSize, len(matched))
		window = matched[start:end]
	}

	for _, rec := range window {
		item := Item{
			Record: rec,
			Counts: rec.BallotCounts(),
		}
		if q.MemberID != 0 {
			item.MemberPosition = rec.PositionOf(q.MemberID)
		}
		res.Items = append(res.Items, item)
	}
	return res
}
