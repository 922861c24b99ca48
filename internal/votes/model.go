package votes

import (
	"encoding/json"
	"time"
)

type Position string

const (
	For        Position = "FOR"
	Against    Position = "AGAINST"
	Abstention Position = "ABSTENTION"
	DidNotVote Position = "DID_NOT_VOTE"
	Unknown    Position = "UNKNOWN"
)

// ParsePosition maps a source position onto the known set, anything else is
// Unknown.
func ParsePosition(s string) Position {
	switch Position(s) {
	case For, Against, Abstention, DidNotVote:
		return Position(s)
	}
	return Unknown
}

// Cast reports whether the position is an actual vote (for, against or
// abstention).
func (p Position) Cast() bool {
	return p == For || p == Against || p == Abstention
}

type Tally struct {
	For        int64 `json:"for"`
	Against    int64 `json:"against"`
	Abstention int64 `json:"abstention"`
	DidNotVote int64 `json:"did_not_vote"`
}

func (t *Tally) Add(p Position) {
	switch p {
	case For:
		t.For++
	case Against:
		t.Against++
	case Abstention:
		t.Abstention++
	case DidNotVote:
		t.DidNotVote++
	}
}

type GeoArea struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Country struct {
	Code      string `json:"code"`
	IsoAlpha2 string `json:"iso_alpha_2"`
	Label     string `json:"label"`
}

type Group struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	ShortLabel string `json:"short_label"`
}

// Key identifies the group in a breakdown, falling back to the short label
// and then to "Unknown".
func (g Group) Key() string {
	if g.Code != "" {
		return g.Code
	}
	if g.ShortLabel != "" {
		return g.ShortLabel
	}
	return UnknownKey
}

// Faction is the label shown for a group.
func (g Group) Faction() string {
	if g.ShortLabel != "" {
		return g.ShortLabel
	}
	if g.Code != "" {
		return g.Code
	}
	return UnknownKey
}

func (c Country) Key() string {
	if c.Code != "" {
		return c.Code
	}
	return UnknownKey
}

const UnknownKey = "Unknown"

type GroupBreakdown struct {
	Group Group `json:"group"`
	Tally Tally `json:"tally"`
	// Derived is set when the counts were aggregated from ballots because the
	// source carried no breakdown.
	Derived bool `json:"derived"`
}

type CountryBreakdown struct {
	Country Country `json:"country"`
	Tally   Tally   `json:"tally"`
	Derived bool    `json:"derived"`
}

type Stats struct {
	// HasTotal is false when the source had no total tally, Total is then
	// all zero.
	HasTotal  bool               `json:"has_total"`
	Total     Tally              `json:"total"`
	ByGroup   []GroupBreakdown   `json:"by_group"`
	ByCountry []CountryBreakdown `json:"by_country"`
}

// Member is a member's identity and affiliation as recorded on one ballot.
type Member struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth string  `json:"date_of_birth,omitempty"`
	Country     Country `json:"country"`
	Group       Group   `json:"group"`
	PhotoUrl    string  `json:"photo_url,omitempty"`
	ThumbUrl    string  `json:"thumb_url,omitempty"`
	Email       string  `json:"email,omitempty"`
	Facebook    string  `json:"facebook,omitempty"`
	Twitter     string  `json:"twitter,omitempty"`
}

type Ballot struct {
	Member   Member   `json:"member"`
	Position Position `json:"position"`
}

// Record is one normalized roll-call vote.
type Record struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	// Time is the parsed Timestamp, zero if it could not be parsed.
	Time          time.Time       `json:"-"`
	DisplayTitle  string          `json:"display_title"`
	Description   *string         `json:"description"`
	Reference     *string         `json:"reference"`
	GeoAreas      []GeoArea       `json:"geo_areas"`
	GeoAreaLabels string          `json:"geo_area_labels"`
	Result        string          `json:"result"`
	Stats         Stats           `json:"stats"`
	Ballots       []Ballot        `json:"member_votes"`
	Raw           json.RawMessage `json:"-"`
}

// PositionOf returns how a member voted, DidNotVote when the member has no
// ballot on this record.
func (r Record) PositionOf(memberId int64) Position {
	for _, b := range r.Ballots {
		if b.Member.ID == memberId {
			return b.Position
		}
	}
	return DidNotVote
}

// BallotCounts counts the ballots per position.
func (r Record) BallotCounts() Tally {
	var t Tally
	for _, b := range r.Ballots {
		t.Add(b.Position)
	}
	return t
}

// MemberProfile is a member as seen across every record.
type MemberProfile struct {
	Member
	// LastVoteID is the record the affiliation was taken from.
	LastVoteID int64 `json:"last_vote_id"`
	// VoteCount is the number of records carrying a ballot of this member.
	VoteCount int `json:"vote_count"`
}
