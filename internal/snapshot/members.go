package snapshot

import (
	"slices"
	"strings"

	"rollcall-backend/internal/votes"
	"rollcall-backend/pkg/textutil"
)

// buildMembers collects every distinct member. records must be sorted newest
// first, the affiliation of a member is the one on their most recent ballot.
func buildMembers(records []votes.Record) ([]votes.MemberProfile, map[int64]int) {
	profiles := map[int64]*votes.MemberProfile{}
	for _, rec := range records {
		for _, b := range rec.Ballots {
			p, ok := profiles[b.Member.ID]
			if !ok {
				p = &votes.MemberProfile{
					Member:     b.Member,
					LastVoteID: rec.ID,
				}
				profiles[b.Member.ID] = p
			}
			p.VoteCount++
		}
	}

	out := make([]votes.MemberProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b votes.MemberProfile) int {
		if c := strings.Compare(textutil.NormalizeName(a.LastName), textutil.NormalizeName(b.LastName)); c != 0 {
			return c
		}
		if c := strings.Compare(textutil.NormalizeName(a.FirstName), textutil.NormalizeName(b.FirstName)); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	index := make(map[int64]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}
	return out, index
}

// Members returns the member directory sorted by last name.
func (c *Cache) Members() []votes.MemberProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.members)
}

func (c *Cache) Member(id int64) (votes.MemberProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.memberIdx[id]
	if !ok {
		return votes.MemberProfile{}, false
	}
	return c.members[i], true
}

// SearchMembers returns the members whose last name contains lastName,
// ignoring case, accents and whitespace. An empty query matches nobody.
func (c *Cache) SearchMembers(lastName string) []votes.MemberProfile {
	if textutil.NormalizeName(lastName) == "" {
		return []votes.MemberProfile{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []votes.MemberProfile{}
	for _, m := range c.members {
		if textutil.MatchName(m.LastName, lastName) {
			out = append(out, m)
		}
	}
	return out
}

type MemberSummary struct {
	Member votes.MemberProfile
	// Positions counts the member's position on every cached vote, a vote
	// without a ballot counts as did not vote.
	Positions votes.Tally
	Unknown   int64
	// Cast is the number of for, against and abstention positions.
	Cast int64
	// Age is nil when the date of birth is missing or unparseable.
	Age *int
}

func (c *Cache) MemberSummary(id int64) (MemberSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.memberIdx[id]
	if !ok {
		return MemberSummary{}, false
	}

	summary := MemberSummary{Member: c.members[i]}
	for _, rec := range c.records {
		p := rec.PositionOf(id)
		if p == votes.Unknown {
			summary.Unknown++
			continue
		}
		summary.Positions.Add(p)
		if p.Cast() {
			summary.Cast++
		}
	}

	birth, ok := ParseDate(summary.Member.DateOfBirth)
	if ok {
		age := Age(birth, c.time.Now())
		summary.Age = &age
	}
	return summary, true
}
