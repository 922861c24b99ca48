package api

import (
	"fmt"
	"net/http"
	"strings"

	"rollcall-backend/internal/roster"
	"rollcall-backend/internal/votes"

	"github.com/gin-gonic/gin"
)

const (
	report_roster = "roster"
)

type memberEntry struct {
	votes.MemberProfile
	Faction string `json:"faction"`
	// InOffice and CurrentGroup come from the current roster, they are nil
	// when no roster is available.
	InOffice     *bool   `json:"in_office,omitempty"`
	CurrentGroup *string `json:"current_group,omitempty"`
}

type memberDetail struct {
	memberEntry
	Positions votes.Tally `json:"positions"`
	Unknown   int64       `json:"unknown"`
	CastVotes int64       `json:"cast_votes"`
	Age       *int        `json:"age,omitempty"`
}

// currentRoster returns the roster indexed by member id, or nil when none is
// available. A failing roster is reported and otherwise ignored.
func (h handler) currentRoster(c *gin.Context) map[int64]roster.Member {
	if h.roster == nil {
		return nil
	}
	members, err := h.roster.Load(c.Request.Context())
	if err != nil {
		h.tel.ReportWarning(report_roster, err)
		return nil
	}
	return roster.Index(members)
}

func entry(p votes.MemberProfile, current map[int64]roster.Member) memberEntry {
	e := memberEntry{
		MemberProfile: p,
		Faction:       p.Group.Faction(),
	}
	if current != nil {
		m, ok := current[p.ID]
		e.InOffice = &ok
		if ok {
			group := m.PoliticalGroup
			e.CurrentGroup = &group
		}
	}
	return e
}

func (h handler) listMembers(c *gin.Context) {
	current := h.currentRoster(c)
	profiles := h.cache.Members()

	out := make([]memberEntry, len(profiles))
	for i, p := range profiles {
		out[i] = entry(p, current)
	}
	RespondOK(c, out)
}

func (h handler) getMember(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}

	summary, ok := h.cache.MemberSummary(id)
	if !ok {
		RespondError(c, http.StatusNotFound, "member_not_found", fmt.Errorf("member %d not found", id))
		return
	}

	RespondOK(c, memberDetail{
		memberEntry: entry(summary.Member, h.currentRoster(c)),
		Positions:   summary.Positions,
		Unknown:     summary.Unknown,
		CastVotes:   summary.Cast,
		Age:         summary.Age,
	})
}

func (h handler) searchMembers(c *gin.Context) {
	lastName := strings.TrimSpace(c.Query("last_name"))
	found := h.cache.SearchMembers(lastName)

	out := make([]memberEntry, len(found))
	for i, p := range found {
		out[i] = entry(p, nil)
	}
	RespondOK(c, out)
}

func (h handler) listRoster(c *gin.Context) {
	if h.roster == nil {
		RespondError(c, http.StatusNotFound, "roster_disabled", fmt.Errorf("no roster configured"))
		return
	}
	members, err := h.roster.Load(c.Request.Context())
	if err != nil {
		h.tel.ReportWarning(report_roster, err)
		RespondError(c, http.StatusBadGateway, "roster_unavailable", err)
		return
	}
	RespondOK(c, members)
}
