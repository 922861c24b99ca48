package howtheyvote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes both JSON numbers and numeric strings, the vote id has
// been served as either.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
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

// Tally counts ballots per position.
type Tally struct {
	For        int64 `json:"FOR"`
	Against    int64 `json:"AGAINST"`
	Abstention int64 `json:"ABSTENTION"`
	DidNotVote int64 `json:"DID_NOT_VOTE"`
}

type GroupStats struct {
	Group Group `json:"group"`
	Stats Tally `json:"stats"`
}

type CountryStats struct {
	Country Country `json:"country"`
	Stats   Tally   `json:"stats"`
}

type Stats struct {
	// Total is nil when the record carries no total tally.
	Total     *Tally         `json:"total"`
	ByGroup   []GroupStats   `json:"by_group"`
	ByCountry []CountryStats `json:"by_country"`
}

type Member struct {
	ID          FlexInt  `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	DateOfBirth *string  `json:"date_of_birth"`
	Country     *Country `json:"country"`
	Group       *Group   `json:"group"`
	PhotoUrl    string   `json:"photo_url"`
	ThumbUrl    string   `json:"thumb_url"`
	Email       string   `json:"email"`
	Facebook    string   `json:"facebook"`
	Twitter     string   `json:"twitter"`
}

type MemberVote struct {
	Member   Member `json:"member"`
	Position string `json:"position"`
}

// Vote is one record as served by `/api/votes/{id}`. Optional fields are
// pointers, missing lists decode as nil.
type Vote struct {
	ID           FlexInt      `json:"id"`
	Timestamp    string       `json:"timestamp"`
	DisplayTitle string       `json:"display_title"`
	Description  *string      `json:"description"`
	Reference    *string      `json:"reference"`
	GeoAreas     []GeoArea    `json:"geo_areas"`
	Result       string       `json:"result"`
	Stats        Stats        `json:"stats"`
	MemberVotes  []MemberVote `json:"member_votes"`
}

// Validate checks the fields every later stage relies on.
func (v Vote) Validate() error {
	if v.ID <= 0 {
		return fmt.Errorf("invalid vote id %d", v.ID)
	}
	for i, mv := range v.MemberVotes {
		if mv.Member.ID <= 0 {
			return fmt.Errorf("vote %d: member vote %d has invalid member id %d", v.ID, i, mv.Member.ID)
		}
	}
	return nil
}

// DecodeVote parses and validates a raw record.
func DecodeVote(raw []byte) (Vote, error) {
	var vote Vote
	err := json.Unmarshal(raw, &vote)
	if err != nil {
		return Vote{}, fmt.Errorf("decode vote: %w", err)
	}
	err = vote.Validate()
	if err != nil {
		return Vote{}, err
	}
	return vote, nil
}
