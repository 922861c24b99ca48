package howtheyvote

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"slices"
	"strconv"

	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_discover_page = "discover.page"
	report_discover_stop = "discover.stop"
)

var voteLinkRegex = regexp.MustCompile(`/votes/(\d{6})`)

// PageFetcher returns the raw content of listing page `page` (starting at 1).
type PageFetcher = func(ctx context.Context, page int) ([]byte, error)

type Order int

const (
	Ascending Order = iota
	Descending
)

func ParseOrder(s string) (Order, bool) {
	switch s {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return Ascending, false
}

type DiscoverOptions struct {
	MaxPages int
	Order    Order
	// Base resolves relative hrefs, it may be nil.
	Base *url.URL
}

// ExtractIds returns every distinct id linked from a listing page in the
// order it first appears. Anchors are preferred, a body without any anchor
// is scanned as plain text.
func ExtractIds(ctx context.Context, base *url.URL, body []byte) []int64 {
	var candidates []string

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		for _, a := range htmlutil.GetAnchors(ctx, base, doc) {
			for _, m := range voteLinkRegex.FindAllStringSubmatch(a.Href.Path, -1) {
				candidates = append(candidates, m[1])
			}
		}
		if doc.Find("a[href]").Length() > 0 {
			return parseIds(candidates)
		}
	}

	for _, m := range voteLinkRegex.FindAllSubmatch(body, -1) {
		candidates = append(candidates, string(m[1]))
	}
	return parseIds(candidates)
}

func parseIds(candidates []string) []int64 {
	seen := map[int64]struct{}{}
	var ids []int64
	for _, c := range candidates {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Discover walks listing pages 1..MaxPages and collects vote ids that are
// not already known. It stops early on the first failing page and on the
// first page that yields no new id. Errors never escape, the ids gathered
// so far are returned.
func Discover(
	ctx context.Context,
	fetch PageFetcher,
	known func(id int64) bool,
	opts DiscoverOptions,
	tel telemetry.API,
) []int64 {
	tel = telemetry.NewScopedAPI("howtheyvote", tel)

	found := map[int64]struct{}{}
	for page := 1; page <= opts.MaxPages; page++ {
		if ctx.Err() != nil {
			tel.ReportWarning(report_discover_stop, ctx.Err(), page)
			break
		}

		body, err := fetch(ctx, page)
		if err != nil {
			tel.ReportWarning(report_discover_stop, err, page)
			break
		}

		fresh := 0
		for _, id := range ExtractIds(ctx, opts.Base, body) {
			if _, ok := found[id]; ok {
				continue
			}
			if known != nil && known(id) {
				continue
			}
			found[id] = struct{}{}
			fresh++
		}
		tel.ReportDebug(report_discover_page, page, telemetry.KV{Key: "new", Value: fresh})

		if fresh == 0 {
			tel.ReportDebug(report_discover_stop, "no new ids", page)
			break
		}
	}

	ids := make([]int64, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if opts.Order == Descending {
		slices.Reverse(ids)
	}
	return ids
}
