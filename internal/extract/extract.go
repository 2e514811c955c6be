package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// Strategy extracts canonical events from a parsed document. base resolves
// relative links; source attributes the resulting records.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, base *url.URL, source string) []*event.Event
}

// Cascade applies strategies in order and returns the first non-empty result.
func Cascade(doc *goquery.Document, base *url.URL, source string, strategies ...Strategy) []*event.Event {
	for _, s := range strategies {
		if events := s.Extract(doc, base, source); len(events) > 0 {
			return events
		}
	}
	return nil
}

// whenLayouts are the unambiguous machine-readable forms accepted for
// dates; locale-specific text forms are the scraping adapters' business.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseWhen parses a machine-readable date string into an absolute instant,
// interpreting offset-less forms in loc. Returns nil if nothing matches;
// adapters leave the field unset rather than passing through an ambiguous
// string.
func ParseWhen(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	for _, layout := range whenLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// AbsURL resolves href against base, returning href unchanged when it is
// already absolute or no base is known.
func AbsURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
