package howtheyvote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_get_vote    = "client.get-vote"
	report_client_get_listing = "client.get-listing"
)

// ErrNotFound is returned when the source has no record for an id.
var ErrNotFound = errors.New("howtheyvote: record not found")

// ErrIdMismatch is returned when the source answers with a different record
// than the one requested.
var ErrIdMismatch = errors.New("howtheyvote: record id does not match")

// StatusError is returned for any other non-success response.
type StatusError struct {
	Url    string
	Status int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("howtheyvote: %s returned status %d", e.Url, e.Status)
}

type ClientOptions struct {
	BaseUrl string
	// ListingSort is passed as the `sort` query parameter of listing pages.
	ListingSort string
	// FetchDelay is the minimum time between two requests.
	FetchDelay time.Duration
	Timeout    time.Duration
	Retries    int
	RetryWait  time.Duration
}

type Client struct {
	baseUrl     *url.URL
	listingSort string
	http        *resty.Client
	tel         telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)

	tel = telemetry.NewScopedAPI("howtheyvote", tel)

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return Client{}, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	httpClient.SetHeader("accept", "application/json, text/html")
	httpClient.SetTimeout(opts.Timeout)

	httpClient.SetRetryCount(opts.Retries)
	httpClient.SetRetryWaitTime(opts.RetryWait)
	httpClient.SetRetryMaxWaitTime(opts.RetryWait * 8)
	// the condition replaces resty's own retry on transport errors, so
	// dropped connections and timeouts are retried here
	httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if res == nil {
			return false
		}
		return res.StatusCode() == http.StatusTooManyRequests ||
			res.StatusCode() >= 500
	})

	// one request per FetchDelay, a zero delay disables the throttle
	limit := rate.Inf
	if opts.FetchDelay > 0 {
		limit = rate.Every(opts.FetchDelay)
	}
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)

	return Client{
		baseUrl:     baseUrl,
		listingSort: opts.ListingSort,
		http:        httpClient,
		tel:         tel,
	}, nil
}

// BaseUrl is the url listing hrefs are resolved against.
func (c Client) BaseUrl() *url.URL {
	return c.baseUrl
}

// ListingPage fetches one page of the vote listing, pages start at 1.
func (c Client) ListingPage(ctx context.Context, page int) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page))
	if c.listingSort != "" {
		req.SetQueryParam("sort", c.listingSort)
	}

	res, err := req.Get("/votes")
	if err != nil {
		return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
	}
	if res.IsError() {
		err := StatusError{Url: res.Request.URL, Status: res.StatusCode()}
		c.tel.ReportWarning(report_client_get_listing, err, page)
		return nil, err
	}
	return res.Body(), nil
}

// Vote fetches and decodes one record. The raw body is returned alongside the
// decoded record so it can be stored verbatim.
func (c Client) Vote(ctx context.Context, id int64) (Vote, []byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Get("/api/votes/{id}")
	if err != nil {
		return Vote{}, nil, fmt.Errorf("fetch vote %d: %w", id, err)
	}

	if res.StatusCode() == http.StatusNotFound {
		c.tel.ReportWarning(report_client_get_vote, ErrNotFound, id)
		return Vote{}, nil, fmt.Errorf("vote %d: %w", id, ErrNotFound)
	}
	if res.IsError() {
		err := StatusError{Url: res.Request.URL, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_get_vote, err, id)
		return Vote{}, nil, err
	}

	raw := res.Body()
	vote, err := DecodeVote(raw)
	if err != nil {
		c.tel.ReportBroken(report_client_get_vote, err, id)
		return Vote{}, nil, err
	}
	if int64(vote.ID) != id {
		err := fmt.Errorf("%w: requested %d, received %d", ErrIdMismatch, id, int64(vote.ID))
		c.tel.ReportBroken(report_client_get_vote, err)
		return Vote{}, nil, err
	}

	return vote, raw, nil
}
