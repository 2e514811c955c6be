package event

import (
	"strings"
	"time"
)

// MaxDescriptionLen caps free-text descriptions on the canonical record.
const MaxDescriptionLen = 200

// DefaultCategory is assigned when a source carries no usable classification.
const DefaultCategory = "other"

// Event is the canonical record produced by every provider adapter.
//
// Start and End are nil when the source exposed no parseable date; an event
// with a nil Start sorts after all dated events. If End precedes Start
// (scraped data can be inverted) consumers treat the event as a single
// instant at Start.
type Event struct {
	Name        string     `json:"name"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	Address     string     `json:"address,omitempty"`
	Category    string     `json:"category"`
	URL         string     `json:"url,omitempty"`
	Price       string     `json:"price,omitempty"`
	Description string     `json:"description,omitempty"`
	// Sources lists the contributing source identifiers in merge order.
	// Repeated merges from the same source produce repeated entries.
	Sources []string `json:"sources"`
}

// New creates an Event attributed to a single source, normalizing the name
// and defaulting the category. Returns nil if the name is empty after
// trimming; such records must not leave an adapter.
func New(name, source string) *Event {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &Event{
		Name:     name,
		Category: DefaultCategory,
		Sources:  []string{source},
	}
}

// Valid reports whether the record satisfies the model invariants: a
// non-empty trimmed name and at least one contributing source.
func (e *Event) Valid() bool {
	return e != nil && strings.TrimSpace(e.Name) != "" && len(e.Sources) > 0
}

// Clone returns a deep copy. The deduplicator merges into clones so that
// input records handed to the orchestrator are never mutated.
func (e *Event) Clone() *Event {
	c := *e
	if e.Start != nil {
		s := *e.Start
		c.Start = &s
	}
	if e.End != nil {
		t := *e.End
		c.End = &t
	}
	c.Sources = append([]string(nil), e.Sources...)
	return &c
}

// EffectiveEnd returns the instant the event is considered over: its End if
// present and not inverted, otherwise its Start. Returns nil for undated
// events.
func (e *Event) EffectiveEnd() *time.Time {
	if e.End != nil && (e.Start == nil || !e.End.Before(*e.Start)) {
		return e.End
	}
	return e.Start
}

// SourceList joins the contributing sources for display.
func (e *Event) SourceList() string {
	return strings.Join(e.Sources, ",")
}

// Truncate shortens s to at most MaxDescriptionLen characters, counting
// runes so multi-byte locale text is not cut mid-character.
func Truncate(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLen {
		return s
	}
	return string(runes[:MaxDescriptionLen])
}

// FilterCategory keeps events whose category matches cat (case-insensitive).
// An empty cat keeps everything.
func FilterCategory(events []*Event, cat string) []*Event {
	if cat == "" {
		return events
	}
	kept := make([]*Event, 0, len(events))
	for _, e := range events {
		if strings.EqualFold(e.Category, cat) {
			kept = append(kept, e)
		}
	}
	return kept
}
