package extract

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// eventTypes enumerates the schema.org types accepted as "event-like".
// Deliberately an exact-match set: substring matching would silently accept
// unrelated structured data (e.g. "EventReservation").
var eventTypes = map[string]bool{
	"Event":           true,
	"BusinessEvent":   true,
	"ChildrensEvent":  true,
	"ComedyEvent":     true,
	"DanceEvent":      true,
	"EducationEvent":  true,
	"ExhibitionEvent": true,
	"Festival":        true,
	"FoodEvent":       true,
	"LiteraryEvent":   true,
	"MusicEvent":      true,
	"ScreeningEvent":  true,
	"SocialEvent":     true,
	"SportsEvent":     true,
	"TheaterEvent":    true,
	"VisualArtsEvent": true,
}

// JSONLD extracts events from embedded application/ld+json script blocks.
type JSONLD struct {
	// Loc interprets offset-less timestamps.
	Loc *time.Location
}

func (JSONLD) Name() string { return "jsonld" }

// Extract parses every JSON-LD block in the document and maps each
// event-typed object (top-level, array entry, or @graph entry) to the
// canonical model.
func (j JSONLD) Extract(doc *goquery.Document, base *url.URL, source string) []*event.Event {
	var events []*event.Event
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			return
		}
		for _, obj := range flattenLD(raw) {
			if e := j.mapObject(obj, base, source); e != nil {
				events = append(events, e)
			}
		}
	})
	return events
}

// flattenLD yields the candidate objects of a decoded block: the object
// itself, each array entry, and each @graph entry.
func flattenLD(raw any) []map[string]any {
	var objs []map[string]any
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
	case map[string]any:
		objs = append(objs, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					objs = append(objs, m)
				}
			}
		}
	}
	return objs
}

// isEventType checks the declared @type (string or list) against the
// allowed set.
func isEventType(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return eventTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && eventTypes[s] {
				return true
			}
		}
	}
	return false
}

func (j JSONLD) mapObject(obj map[string]any, base *url.URL, source string) *event.Event {
	if !isEventType(obj) {
		return nil
	}
	e := event.New(ldString(obj, "name"), source)
	if e == nil {
		return nil
	}

	e.Start = ParseWhen(ldString(obj, "startDate"), j.Loc)
	e.End = ParseWhen(ldString(obj, "endDate"), j.Loc)
	e.URL = AbsURL(base, ldString(obj, "url"))
	e.Description = event.Truncate(ldString(obj, "description"))

	switch loc := obj["location"].(type) {
	case string:
		e.Venue = strings.TrimSpace(loc)
	case map[string]any:
		e.Venue = ldString(loc, "name")
		e.Address = ldAddress(loc["address"])
	}

	if free, ok := obj["isAccessibleForFree"].(bool); ok && free {
		e.Price = "free"
	}
	return e
}

// ldAddress renders a schema.org address, which may be a plain string or a
// PostalAddress object. Empty parts are filtered before joining.
func ldAddress(v any) string {
	switch addr := v.(type) {
	case string:
		return strings.TrimSpace(addr)
	case map[string]any:
		parts := make([]string, 0, 3)
		for _, key := range []string{"streetAddress", "postalCode", "addressLocality"} {
			if p := ldString(addr, key); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func ldString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
