package votes

import (
	"fmt"
	"regexp"
	"strings"
)

const documentBaseUrl = "https://www.europarl.europa.eu/doceo/document"

// A9-0123/2024 -> letter 'A', term 9, number 0123, year 2024
var referenceRegex = regexp.MustCompile(`^([A-Za-z])(\d+)-(\d+)/(\d+)`)

// DocumentSegment rewrites a reference into the segment order of the
// document viewer: `A9-0123/2024` becomes `A-9-2024-0123`. References of any
// other shape only have their slashes replaced, `N/A` becomes `N-A`.
func DocumentSegment(reference string) string {
	reference = strings.TrimSpace(reference)
	m := referenceRegex.FindStringSubmatch(reference)
	if m == nil {
		return strings.ReplaceAll(reference, "/", "-")
	}
	return fmt.Sprintf("%s-%s-%s-%s", m[1], m[2], m[4], m[3])
}

// DocumentLink returns the english document url for a reference, or "" when
// the reference is empty.
func DocumentLink(reference string) string {
	if strings.TrimSpace(reference) == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s_EN.html", documentBaseUrl, DocumentSegment(reference))
}

// DocumentLink returns the document url of the record's reference.
func (r Record) DocumentLink() string {
	if r.Reference == nil {
		return ""
	}
	return DocumentLink(*r.Reference)
}
