package extract

import (
	"testing"
	"time"
)

const heuristicHTML = `<html><body>
<div class="event-item">
  <h3>Sommerkino im Park</h3>
  <time datetime="2026-06-10T21:30">10. Juni, 21:30</time>
  <span class="venue">Stadtpark</span>
  <a href="/impressum">Impressum</a>
  <a href="/veranstaltungen/sommerkino">Details</a>
</div>
<div class="event-item">
  <h3>Flohmarkt</h3>
  <span class="date">2026-06-14</span>
</div>
<div class="event-item"><p>Ohne Titel</p></div>
</body></html>`

func TestHeuristicExtract(t *testing.T) {
	base := mustURL(t, "https://example.com/kalender")
	events := Heuristic{Loc: time.UTC}.Extract(docFrom(t, heuristicHTML), base, "test")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (titleless card discarded)", len(events))
	}

	first := events[0]
	if first.Name != "Sommerkino im Park" {
		t.Errorf("name = %q", first.Name)
	}
	if first.URL != "https://example.com/veranstaltungen/sommerkino" {
		t.Errorf("url = %q, want the event-path anchor resolved absolute", first.URL)
	}
	if first.Start == nil || !first.Start.Equal(time.Date(2026, time.June, 10, 21, 30, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want machine-readable datetime attribute", first.Start)
	}
	if first.Venue != "Stadtpark" {
		t.Errorf("venue = %q", first.Venue)
	}

	second := events[1]
	if second.Start == nil || second.Start.Day() != 14 {
		t.Errorf("second start = %v, want date from text fallback", second.Start)
	}
	if second.URL != "" {
		t.Errorf("second url = %q, non-event anchors must not be picked", second.URL)
	}
}

func TestHeuristicPatternPriority(t *testing.T) {
	// First pattern with candidates wins even when a later one matches more.
	html := `<html><body>
	<div class="event-card"><h3>Karte</h3></div>
	<li class="event"><h4>Liste eins</h4></li>
	<li class="event"><h4>Liste zwei</h4></li>
	</body></html>`

	events := Heuristic{Loc: time.UTC}.Extract(docFrom(t, html), nil, "test")
	if len(events) != 1 || events[0].Name != "Karte" {
		t.Fatalf("events = %+v, want only the event-card match", events)
	}
}

func TestHeuristicMostMatches(t *testing.T) {
	html := `<html><body>
	<article><h2>Einzeln</h2></article>
	<li class="item"><h3>Eins</h3></li>
	<li class="item"><h3>Zwei</h3></li>
	</body></html>`

	events := Heuristic{
		Patterns:    []string{"article", "li[class*='item']"},
		MostMatches: true,
		Loc:         time.UTC,
	}.Extract(docFrom(t, html), nil, "test")

	if len(events) != 2 {
		t.Fatalf("got %d events, want the pattern with the most matches to win", len(events))
	}
}

func TestCascadeFirstNonEmptyWins(t *testing.T) {
	// JSON-LD present: heuristic must not run, even though cards exist.
	html := `<html><head>
	<script type="application/ld+json">{"@type": "Event", "name": "Strukturiert", "startDate": "2026-06-01"}</script>
	</head><body>
	<div class="event-item"><h3>Heuristisch</h3></div>
	</body></html>`

	doc := docFrom(t, html)
	events := Cascade(doc, nil, "test", JSONLD{Loc: time.UTC}, Heuristic{Loc: time.UTC})
	if len(events) != 1 || events[0].Name != "Strukturiert" {
		t.Fatalf("events = %+v, want the structured result only", events)
	}

	// Without structured data the cascade falls through.
	events = Cascade(docFrom(t, heuristicHTML), nil, "test", JSONLD{Loc: time.UTC}, Heuristic{Loc: time.UTC})
	if len(events) != 2 {
		t.Fatalf("fallback got %d events, want 2", len(events))
	}
}
