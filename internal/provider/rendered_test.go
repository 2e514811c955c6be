package provider

import (
	"testing"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/extract"
)

func newTestRendered(t *testing.T) *Rendered {
	t.Helper()
	src := config.Source{
		Type:         config.TypeRendered,
		Name:         "tourismus",
		DisplayName:  "Tourist-Information Neustadt",
		URL:          "https://www.neustadt.eu/tourismus/events",
		WidgetOrigin: "widget.et4.de",
	}
	return NewRendered(src, testConfig())
}

func TestRenderedExtractWidgetMarkup(t *testing.T) {
	// Typical widget output: repeated data-attributed containers, no
	// structured data, no venue on the cards.
	html := `<html><body>
	<div data-event-id="1"><h3>Weinprobe am Marktplatz</h3><time datetime="2026-06-05T17:00">5. Juni</time></div>
	<div data-event-id="2"><h3>Altstadtführung</h3><span class="datum">06.06.2026</span></div>
	<div data-event-id="3"><h3>Kellerkonzert</h3><span class="venue">Ratskeller</span></div>
	</body></html>`

	p := newTestRendered(t)
	events := p.extractFromHTML(html, extract.WidgetContainerPatterns)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Name != "Weinprobe am Marktplatz" {
		t.Errorf("name = %q", events[0].Name)
	}
	if events[0].Start == nil || events[0].Start.Hour() != 17 {
		t.Errorf("start = %v, want the datetime attribute", events[0].Start)
	}
	for _, e := range events[:2] {
		if e.Venue != "Tourist-Information Neustadt" {
			t.Errorf("venue = %q, want the display-name default", e.Venue)
		}
	}
	if events[2].Venue != "Ratskeller" {
		t.Errorf("venue = %q, a card's own venue must not be overwritten", events[2].Venue)
	}
}

func TestRenderedExtractPrefersStructuredData(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{"@type": "Event", "name": "Strukturiert", "startDate": "2026-06-01"}</script>
	</head><body>
	<div data-event-id="1"><h3>Widgetkarte</h3></div>
	</body></html>`

	events := newTestRendered(t).extractFromHTML(html, extract.WidgetContainerPatterns)
	if len(events) != 1 || events[0].Name != "Strukturiert" {
		t.Fatalf("events = %+v, want structured data to win", events)
	}
}

func TestRenderedExtractMostMatches(t *testing.T) {
	// The pattern yielding the most containers wins, regardless of its
	// position in the pattern list.
	html := `<html><body>
	<article><h2>Einzeln</h2></article>
	<li class="card"><h3>Eins</h3></li>
	<li class="card"><h3>Zwei</h3></li>
	<li class="card"><h3>Drei</h3></li>
	</body></html>`

	events := newTestRendered(t).extractFromHTML(html, extract.FallbackContainerPatterns)
	if len(events) != 3 {
		t.Fatalf("got %d events, want the three list cards", len(events))
	}
}

func TestRenderedExtractUnparsableDocument(t *testing.T) {
	events := newTestRendered(t).extractFromHTML("", extract.WidgetContainerPatterns)
	if len(events) != 0 {
		t.Fatalf("got %d events from an empty document", len(events))
	}
}
