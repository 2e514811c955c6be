package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// DefaultContainerPatterns is the prioritized list of selectors probed for
// event-card containers on pages without structured data.
var DefaultContainerPatterns = []string{
	"[class*='event-card']",
	"[class*='event-item']",
	"article[class*='event']",
	"li[class*='event']",
	"div[class*='veranstaltung']",
	"[itemtype*='Event']",
	".event",
}

// WidgetContainerPatterns targets the markup third-party booking widgets
// tend to emit; used by the rendered-page adapter's first pass.
var WidgetContainerPatterns = []string{
	"[data-event-id]",
	"[class*='event']",
	"li[class*='item']",
	"article",
}

// FallbackContainerPatterns is the rendered-page adapter's second, looser
// pass against the top-level document.
var FallbackContainerPatterns = []string{
	"[class*='teaser']",
	"[class*='card']",
	"[class*='list-item']",
	"li",
}

var headingSelector = "h1, h2, h3, h4, [class*='title']"

var eventPathRe = regexp.MustCompile(`(?i)/(events?|veranstaltung(?:en)?|termine?|kalender)(/|-|$)`)

// Heuristic scans the DOM for event-card shaped containers and pulls
// name/date/venue/url out of each via first-matching-subselector probing.
type Heuristic struct {
	// Patterns overrides DefaultContainerPatterns when non-nil.
	Patterns []string
	// MostMatches switches pattern selection from first-with-candidates to
	// the pattern yielding the most containers (the widget pages' markup
	// varies too much for a fixed priority order).
	MostMatches bool
	// Loc interprets offset-less timestamps.
	Loc *time.Location
}

func (Heuristic) Name() string { return "heuristic" }

func (h Heuristic) Extract(doc *goquery.Document, base *url.URL, source string) []*event.Event {
	containers := h.selectContainers(doc)
	if containers == nil {
		return nil
	}

	var events []*event.Event
	containers.Each(func(_ int, sel *goquery.Selection) {
		if e := h.mapContainer(sel, base, source); e != nil {
			events = append(events, e)
		}
	})
	return events
}

func (h Heuristic) selectContainers(doc *goquery.Document) *goquery.Selection {
	patterns := h.Patterns
	if patterns == nil {
		patterns = DefaultContainerPatterns
	}

	var best *goquery.Selection
	for _, pattern := range patterns {
		found := doc.Find(pattern)
		if found.Length() == 0 {
			continue
		}
		if !h.MostMatches {
			return found
		}
		if best == nil || found.Length() > best.Length() {
			best = found
		}
	}
	return best
}

// mapContainer extracts one candidate. Candidates without a usable name are
// discarded.
func (h Heuristic) mapContainer(sel *goquery.Selection, base *url.URL, source string) *event.Event {
	name := strings.TrimSpace(sel.Find(headingSelector).First().Text())
	e := event.New(name, source)
	if e == nil {
		return nil
	}

	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if eventPathRe.MatchString(href) {
			e.URL = AbsURL(base, href)
			return false
		}
		return true
	})

	if raw := rawDate(sel); raw != "" {
		e.Start = ParseWhen(raw, h.Loc)
	}
	if venue := sel.Find("[class*='venue'], [class*='location'], [class*='ort']").First(); venue.Length() > 0 {
		e.Venue = strings.TrimSpace(venue.Text())
	}
	return e
}

// rawDate returns the first time-like element's machine-readable attribute,
// falling back to its text.
func rawDate(sel *goquery.Selection) string {
	t := sel.Find("time").First()
	if t.Length() > 0 {
		if dt, ok := t.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return dt
		}
		return strings.TrimSpace(t.Text())
	}
	d := sel.Find("[class*='date'], [class*='datum']").First()
	if d.Length() > 0 {
		return strings.TrimSpace(d.Text())
	}
	return ""
}
