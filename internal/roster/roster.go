package roster

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/telemetry"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
)

const (
	report_roster_fetch = "fetch"
	report_roster_cache = "cache"
)

// Member is one entry of the current europarl member list.
type Member struct {
	ID                     int64  `xml:"id" json:"id"`
	FullName               string `xml:"fullName" json:"full_name"`
	Country                string `xml:"country" json:"country"`
	PoliticalGroup         string `xml:"politicalGroup" json:"political_group"`
	NationalPoliticalGroup string `xml:"nationalPoliticalGroup" json:"national_political_group"`
}

type memberList struct {
	XMLName xml.Name `xml:"meps"`
	Members []Member `xml:"mep"`
}

// Parse decodes the europarl `meps` xml document.
func Parse(data []byte) ([]Member, error) {
	var list memberList
	err := xml.Unmarshal(data, &list)
	if err != nil {
		return nil, fmt.Errorf("decode member list: %w", err)
	}
	for i := range list.Members {
		list.Members[i].FullName = strings.TrimSpace(list.Members[i].FullName)
	}
	return list.Members, nil
}

type Options struct {
	Url     string
	TTL     time.Duration
	Timeout time.Duration
}

// Source fetches the member list and keeps the raw document in badger for
// TTL.
type Source struct {
	url   string
	ttl   time.Duration
	http  *resty.Client
	cache *badger.DB
	tel   telemetry.API
}

func NewSource(opts Options, cache *badger.DB, tel telemetry.API) Source {
	assert.NotEmptyStr(opts.Url)
	assert.NotNil(cache)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("roster", tel)

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("accept", "application/xml")
	telemetry.InstrumentResty(httpClient, tel)

	return Source{
		url:   opts.Url,
		ttl:   opts.TTL,
		http:  httpClient,
		cache: cache,
		tel:   tel,
	}
}

func (s Source) cacheKey() []byte {
	return []byte("roster:" + s.url)
}

func (s Source) cached() ([]byte, bool) {
	var data []byte
	err := s.cache.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.cacheKey())
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		s.tel.ReportBroken(report_roster_cache, err, "read")
		return nil, false
	}
	return data, true
}

func (s Source) store(data []byte) {
	err := s.cache.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(s.cacheKey(), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		s.tel.ReportBroken(report_roster_cache, err, "write")
	}
}

// Load returns the current member list, from the cache when it is fresh.
func (s Source) Load(ctx context.Context) ([]Member, error) {
	data, ok := s.cached()
	if ok {
		members, err := Parse(data)
		if err == nil {
			return members, nil
		}
		s.tel.ReportWarning(report_roster_cache, err, "discarding cached member list")
	}

	res, err := s.http.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch member list: %w", err)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch member list: status %d", res.StatusCode())
		s.tel.ReportBroken(report_roster_fetch, err, s.url)
		return nil, err
	}

	members, err := Parse(res.Body())
	if err != nil {
		s.tel.ReportBroken(report_roster_fetch, err, s.url)
		return nil, err
	}
	s.store(res.Body())
	s.tel.ReportCount("members", int64(len(members)))
	return members, nil
}

// Index maps the members by id.
func Index(members []Member) map[int64]Member {
	out := make(map[int64]Member, len(members))
	for _, m := range members {
		out[m.ID] = m
	}
	return out
}
