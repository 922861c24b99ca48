package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("rollcall.htmlutil")

// GetText concatenates every text node under node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

type Anchor struct {
	Name string
	// Href is resolved against the base url given to GetAnchors.
	Href *url.URL
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText strips non-printable characters and collapses whitespace.
func CleanText(s string) string {
	b := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			b.WriteRune(c)
		}
	}
	out := strings.Trim(b.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(out, " ")
}

// GetAnchors returns every `a[href]` in doc with its href resolved against
// base. Unparsable hrefs are skipped.
func GetAnchors(ctx context.Context, base *url.URL, doc *goquery.Document) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			return
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchors = append(anchors, Anchor{
			Name: CleanText(GetText(sel.Get(0))),
			Href: link,
		})
	})
	span.SetAttributes(attribute.Int("count", len(anchors)))

	return anchors
}
