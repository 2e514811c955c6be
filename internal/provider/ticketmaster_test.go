package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
)

const discoveryPayload = `{
  "_embedded": {
    "events": [
      {
        "name": "Open Air Konzert",
        "url": "https://tickets.example/konzert",
        "info": "Großes Konzert auf der Festwiese.",
        "dates": {"start": {"dateTime": "2026-06-05T18:00:00Z", "localDate": "2026-06-05"}},
        "classifications": [{"segment": {"name": "Music"}}],
        "priceRanges": [{"min": 45.0, "currency": "EUR"}, {"min": 29.5, "currency": "EUR"}],
        "_embedded": {"venues": [{
          "name": "Festwiese",
          "address": {"line1": "Festplatz 2"},
          "postalCode": "67433",
          "city": {"name": "Neustadt"}
        }]}
      },
      {
        "name": "Kabarettabend",
        "url": "https://tickets.example/kabarett",
        "description": "Politisches Kabarett.",
        "dates": {"start": {"localDate": "2026-06-08"}},
        "classifications": [],
        "_embedded": {"venues": [{"name": "Saalbau", "address": {}, "city": {}}]}
      },
      {
        "name": "   ",
        "dates": {"start": {}}
      }
    ]
  }
}`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LatLong = "49.35,8.14"
	cfg.RadiusKM = 25
	cfg.Limit = 50
	return cfg
}

func testRange(t *testing.T) daterange.Range {
	t.Helper()
	r, err := daterange.Resolve("2026-06-01:2026-06-08", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("resolving range: %v", err)
	}
	return r
}

func TestTicketmasterSkipsWithoutCredential(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")

	tm := NewTicketmaster(config.Source{Type: config.TypeTicketmaster, Name: "tm"}, testConfig())
	res := tm.Fetch(context.Background(), testRange(t))

	if !res.Skipped() {
		t.Fatalf("status = %q, want a skip", res.Status)
	}
	if res.Status != "skip(no credential)" {
		t.Errorf("status = %q, want skip(no credential)", res.Status)
	}
	if len(res.Events) != 0 {
		t.Errorf("skip must carry no events, got %d", len(res.Events))
	}
}

func TestTicketmasterFetch(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "test-key")

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != discoveryPath {
			t.Errorf("path = %q, want %q", r.URL.Path, discoveryPath)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(discoveryPayload))
	}))
	defer srv.Close()

	tm := NewTicketmaster(config.Source{Type: config.TypeTicketmaster, Name: "tm", URL: srv.URL}, testConfig())
	res := tm.Fetch(context.Background(), testRange(t))

	if res.Failed() || res.Skipped() {
		t.Fatalf("status = %q, want ok", res.Status)
	}
	if res.Status != "ok(2)" {
		t.Errorf("status = %q, want ok(2) (nameless record dropped)", res.Status)
	}

	wantQuery := map[string]string{
		"apikey":        "test-key",
		"latlong":       "49.35,8.14",
		"radius":        "25",
		"unit":          "km",
		"startDateTime": "2026-06-01T00:00:00Z",
		"endDateTime":   "2026-06-08T23:59:59Z",
		"size":          "50",
		"sort":          "date,asc",
	}
	for k, want := range wantQuery {
		if gotQuery[k] != want {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], want)
		}
	}

	first := res.Events[0]
	if first.Name != "Open Air Konzert" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Start == nil || !first.Start.Equal(time.Date(2026, time.June, 5, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want the dateTime field over localDate", first.Start)
	}
	if first.Venue != "Festwiese" {
		t.Errorf("venue = %q", first.Venue)
	}
	if first.Address != "Festplatz 2, 67433, Neustadt" {
		t.Errorf("address = %q, want empty parts filtered and joined", first.Address)
	}
	if first.Category != "music" {
		t.Errorf("category = %q, want lower-cased segment", first.Category)
	}
	if first.Price != "29.50 EUR" {
		t.Errorf("price = %q, want minimum price range with currency suffix", first.Price)
	}
	if first.Description != "Großes Konzert auf der Festwiese." {
		t.Errorf("description = %q, want the info field", first.Description)
	}

	second := res.Events[1]
	if second.Start == nil || second.Start.Day() != 8 {
		t.Errorf("second start = %v, want localDate fallback", second.Start)
	}
	if second.Category != "other" {
		t.Errorf("second category = %q, want default", second.Category)
	}
	if second.Description != "Politisches Kabarett." {
		t.Errorf("second description = %q, want description fallback", second.Description)
	}
	if second.Address != "" {
		t.Errorf("second address = %q, want empty when all parts are empty", second.Address)
	}
}

func TestTicketmasterServerError(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tm := NewTicketmaster(config.Source{Name: "tm", URL: srv.URL}, testConfig())
	res := tm.Fetch(context.Background(), testRange(t))

	if !res.Failed() {
		t.Fatalf("status = %q, want an error result", res.Status)
	}
	if len(res.Events) != 0 {
		t.Errorf("failed fetch must carry no events")
	}
}
