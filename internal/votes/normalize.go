package votes

import (
	"strings"
	"time"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/scrapers/howtheyvote"
)

const (
	mistranslatedDescription = "Proposition de résolution (ensemble du texte)"
	correctedDescription     = "Motions for resolutions"
)

// FixDescription replaces every verbatim occurrence of the one phrase the
// source is known to serve untranslated. Any other text is left unchanged.
func FixDescription(description string) string {
	return strings.ReplaceAll(description, mistranslatedDescription, correctedDescription)
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses a source timestamp, timestamps without a zone are
// Brussels time. It returns the zero time when nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, chrono.Brussels())
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// JoinGeoAreas joins the labels in source order.
func JoinGeoAreas(areas []GeoArea) string {
	labels := make([]string, len(areas))
	for i, a := range areas {
		labels[i] = a.Label
	}
	return strings.Join(labels, ", ")
}

func convertTally(t howtheyvote.Tally) Tally {
	return Tally{
		For:        t.For,
		Against:    t.Against,
		Abstention: t.Abstention,
		DidNotVote: t.DidNotVote,
	}
}

func convertMember(m howtheyvote.Member) Member {
	out := Member{
		ID:        int64(m.ID),
		FirstName: strings.TrimSpace(m.FirstName),
		LastName:  strings.TrimSpace(m.LastName),
		PhotoUrl:  m.PhotoUrl,
		ThumbUrl:  m.ThumbUrl,
		Email:     m.Email,
		Facebook:  m.Facebook,
		Twitter:   m.Twitter,
	}
	if m.DateOfBirth != nil {
		out.DateOfBirth = *m.DateOfBirth
	}
	if m.Country != nil {
		out.Country = Country(*m.Country)
	}
	if m.Group != nil {
		out.Group = Group(*m.Group)
	}
	return out
}

// Normalize converts a fetched record into its relational shape. raw is the
// payload exactly as served and is kept verbatim.
func Normalize(src howtheyvote.Vote, raw []byte) Record {
	rec := Record{
		ID:           int64(src.ID),
		Timestamp:    src.Timestamp,
		Time:         ParseTimestamp(src.Timestamp),
		DisplayTitle: src.DisplayTitle,
		Reference:    src.Reference,
		Result:       src.Result,
		Raw:          append([]byte(nil), raw...),
	}
	if src.Description != nil {
		fixed := FixDescription(*src.Description)
		rec.Description = &fixed
	}

	rec.GeoAreas = make([]GeoArea, len(src.GeoAreas))
	for i, a := range src.GeoAreas {
		rec.GeoAreas[i] = GeoArea(a)
	}
	rec.GeoAreaLabels = JoinGeoAreas(rec.GeoAreas)

	rec.Ballots = make([]Ballot, 0, len(src.MemberVotes))
	seen := map[int64]struct{}{}
	for _, mv := range src.MemberVotes {
		member := convertMember(mv.Member)
		// a member only has one ballot per vote, the first one wins
		if _, ok := seen[member.ID]; ok {
			continue
		}
		seen[member.ID] = struct{}{}
		rec.Ballots = append(rec.Ballots, Ballot{
			Member:   member,
			Position: ParsePosition(mv.Position),
		})
	}

	rec.Stats = normalizeStats(src.Stats, rec.Ballots)
	return rec
}

func normalizeStats(src howtheyvote.Stats, ballots []Ballot) Stats {
	var stats Stats
	if src.Total != nil {
		stats.HasTotal = true
		stats.Total = convertTally(*src.Total)
	}

	if len(src.ByGroup) > 0 {
		seen := map[string]struct{}{}
		for _, g := range src.ByGroup {
			group := Group(g.Group)
			if _, ok := seen[group.Key()]; ok {
				continue
			}
			seen[group.Key()] = struct{}{}
			stats.ByGroup = append(stats.ByGroup, GroupBreakdown{
				Group: group,
				Tally: convertTally(g.Stats),
			})
		}
	} else {
		stats.ByGroup = groupBreakdowns(ballots)
	}

	if len(src.ByCountry) > 0 {
		seen := map[string]struct{}{}
		for _, c := range src.ByCountry {
			country := Country(c.Country)
			if _, ok := seen[country.Key()]; ok {
				continue
			}
			seen[country.Key()] = struct{}{}
			stats.ByCountry = append(stats.ByCountry, CountryBreakdown{
				Country: country,
				Tally:   convertTally(c.Stats),
			})
		}
	} else {
		stats.ByCountry = countryBreakdowns(ballots)
	}

	return stats
}

// groupBreakdowns aggregates ballots per group in order of first appearance.
func groupBreakdowns(ballots []Ballot) []GroupBreakdown {
	var out []GroupBreakdown
	index := map[string]int{}
	for _, b := range ballots {
		key := b.Member.Group.Key()
		i, ok := index[key]
		if !ok {
			group := b.Member.Group
			if key == UnknownKey {
				group = Group{Code: UnknownKey, Label: UnknownKey, ShortLabel: UnknownKey}
			}
			if group.Code == "" {
				group.Code = key
			}
			i = len(out)
			index[key] = i
			out = append(out, GroupBreakdown{Group: group, Derived: true})
		}
		out[i].Tally.Add(b.Position)
	}
	return out
}

func countryBreakdowns(ballots []Ballot) []CountryBreakdown {
	var out []CountryBreakdown
	index := map[string]int{}
	for _, b := range ballots {
		key := b.Member.Country.Key()
		i, ok := index[key]
		if !ok {
			country := b.Member.Country
			if key == UnknownKey {
				country = Country{Code: UnknownKey, Label: UnknownKey}
			}
			i = len(out)
			index[key] = i
			out = append(out, CountryBreakdown{Country: country, Derived: true})
		}
		out[i].Tally.Add(b.Position)
	}
	return out
}
