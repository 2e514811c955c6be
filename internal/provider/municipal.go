package provider

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
	"github.com/stockii/event-skill-for-openclaw/internal/extract"
)

// navigationLabels are index/navigation link texts that must never surface
// as events. Matched case-insensitively and exactly.
var navigationLabels = map[string]bool{
	"today":        true,
	"tomorrow":     true,
	"this week":    true,
	"this weekend": true,
	"4 weeks":      true,
	"events":       true,
	"concerts":     true,
	"theatre":      true,
	"exhibitions":  true,
	"markets":      true,
	"sports":       true,
	"family":       true,
	"other":        true,
}

// Three mutually exclusive date forms, tried in order: a dated time span
// with an hour marker, a date-to-date range, a bare date.
var (
	timedDateRe = regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})\s*,?\s*(\d{1,2}[:.]\d{2})(?:\s*(?:bis|[\x{2013}\x{2014}-])\s*(\d{1,2}[:.]\d{2}))?\s*Uhr`)
	rangeDateRe = regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})\s*(?:bis|[\x{2013}\x{2014}-])\s*(\d{1,2}\.\d{1,2}\.\d{4})`)
	bareDateRe  = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)
)

// Leading photo/press attribution contaminating rendered item text,
// e.g. "© Stadtverwaltung: Stadtfest ...".
var attributionRe = regexp.MustCompile(`^©\s*\S+(?:\s+\S+){0,3}?\s*[:\x{2013}-]\s*`)

// Weak description fallback: a run of at least 10 characters after a
// 4-digit year.
var descAfterYearRe = regexp.MustCompile(`\d{4}\s+(.{10,})`)

// Municipal scrapes the city portal's listing, where each entry is one
// line of unstructured text per list item. Names are recovered from URL
// slugs first because the rendered text is contaminated with attribution
// strings; dates are parsed day.month.year in the configured timezone.
type Municipal struct {
	name    string
	pageURL string
	locale  string
	loc     *time.Location
	client  *http.Client
}

func NewMunicipal(src config.Source, cfg *config.Config) *Municipal {
	return &Municipal{
		name:    src.Name,
		pageURL: src.URL,
		locale:  cfg.Locale,
		loc:     cfg.Location(),
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

func (m *Municipal) Name() string { return m.name }

func (m *Municipal) Fetch(ctx context.Context, r daterange.Range) Result {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	doc, base, err := fetchDocument(ctx, m.client, m.pageURL, m.locale)
	if err != nil {
		return Errorf("%v", err)
	}
	return OK(m.parseListing(doc, base, r))
}

func (m *Municipal) parseListing(doc *goquery.Document, base *url.URL, r daterange.Range) []*event.Event {
	var events []*event.Event
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		if e := m.mapItem(item, base); e != nil && event.InRange(e, r.Start, r.End) {
			events = append(events, e)
		}
	})
	return events
}

func (m *Municipal) mapItem(item *goquery.Selection, base *url.URL) *event.Event {
	link := item.Find("a[href]").First()
	if link.Length() == 0 {
		return nil
	}
	href, _ := link.Attr("href")
	abs := extract.AbsURL(base, href)
	if isIndexLink(abs) {
		return nil
	}

	text := strings.Join(strings.Fields(item.Text()), " ")

	// Slugs are cleaner than rendered text, which carries attributions.
	name := nameFromSlug(abs)
	if name == "" {
		name = strings.TrimSpace(attributionRe.ReplaceAllString(text, ""))
	}
	if navigationLabels[strings.ToLower(name)] {
		return nil
	}

	e := event.New(name, m.name)
	if e == nil {
		return nil
	}
	e.URL = abs
	m.extractWhen(e, text)
	e.Description = m.extractDescription(text)
	return e
}

// isIndexLink rejects query and index pages; only detail pages carry a
// usable slug.
func isIndexLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return true
	}
	slug := strings.Trim(u.Path, "/")
	return slug == "" || !strings.Contains(slug, "/")
}

// nameFromSlug recovers the event name from the URL's last path segment:
// decoded, extension stripped, hyphens and underscores to spaces.
func nameFromSlug(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	seg := path.Base(u.Path)
	if seg == "." || seg == "/" {
		return ""
	}
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	if ext := path.Ext(seg); ext != "" {
		seg = strings.TrimSuffix(seg, ext)
	}
	seg = strings.ReplaceAll(seg, "-", " ")
	seg = strings.ReplaceAll(seg, "_", " ")
	return strings.Join(strings.Fields(seg), " ")
}

// extractWhen applies the three date patterns in order. Unparsable dates
// leave the record undated rather than dropping it.
func (m *Municipal) extractWhen(e *event.Event, text string) {
	if match := timedDateRe.FindStringSubmatch(text); match != nil {
		if start := m.parseDay(match[1], match[2]); start != nil {
			e.Start = start
			if match[3] != "" {
				e.End = m.parseDay(match[1], match[3])
			}
		}
		return
	}
	if match := rangeDateRe.FindStringSubmatch(text); match != nil {
		e.Start = m.parseDay(match[1], "")
		if end := m.parseDay(match[2], ""); end != nil {
			eod := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, m.loc)
			e.End = &eod
		}
		return
	}
	if match := bareDateRe.FindString(text); match != "" {
		e.Start = m.parseDay(match, "")
	}
}

// parseDay parses a day.month.year date and optional hour:minute clock in
// the configured timezone.
func (m *Municipal) parseDay(date, clock string) *time.Time {
	layout := "2.1.2006"
	value := date
	if clock != "" {
		layout = "2.1.2006 15:04"
		value = date + " " + strings.ReplaceAll(clock, ".", ":")
	}
	t, err := time.ParseInLocation(layout, value, m.loc)
	if err != nil {
		return nil
	}
	return &t
}

// extractDescription takes the free text after the time marker, with the
// after-a-year fallback when no timed pattern matched.
func (m *Municipal) extractDescription(text string) string {
	if loc := timedDateRe.FindStringIndex(text); loc != nil {
		return event.Truncate(text[loc[1]:])
	}
	if match := descAfterYearRe.FindStringSubmatch(text); match != nil {
		return event.Truncate(match[1])
	}
	return ""
}
