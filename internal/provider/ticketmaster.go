package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

const (
	discoveryBaseURL = "https://app.ticketmaster.com"
	discoveryPath    = "/discovery/v2/events.json"
	// The Discovery API rejects fractional seconds and offsets other than Z.
	discoveryTimeFmt = "2006-01-02T15:04:05Z"
)

// Ticketmaster queries the Discovery API for events around the configured
// geo point. Without a credential it skips rather than erroring: the run
// simply proceeds on the scraped sources.
type Ticketmaster struct {
	name    string
	apiKey  string
	baseURL string
	latlong string
	radius  int
	limit   int
	client  *http.Client
}

// NewTicketmaster builds the structured-API adapter. src.URL overrides the
// API base for tests.
func NewTicketmaster(src config.Source, cfg *config.Config) *Ticketmaster {
	base := src.URL
	if base == "" {
		base = discoveryBaseURL
	}
	return &Ticketmaster{
		name:    src.Name,
		apiKey:  cfg.Credential(),
		baseURL: base,
		latlong: cfg.LatLong,
		radius:  cfg.RadiusKM,
		limit:   cfg.Limit,
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

func (t *Ticketmaster) Name() string { return t.name }

func (t *Ticketmaster) Fetch(ctx context.Context, r daterange.Range) Result {
	if t.apiKey == "" {
		return Skip("no credential")
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("apikey", t.apiKey)
	q.Set("latlong", t.latlong)
	q.Set("radius", strconv.Itoa(t.radius))
	q.Set("unit", "km")
	q.Set("startDateTime", r.Start.UTC().Format(discoveryTimeFmt))
	q.Set("endDateTime", r.End.UTC().Format(discoveryTimeFmt))
	q.Set("size", strconv.Itoa(t.limit))
	q.Set("sort", "date,asc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+discoveryPath+"?"+q.Encode(), nil)
	if err != nil {
		return Errorf("creating request: %v", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Errorf("fetching events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload discoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Errorf("decoding response: %v", err)
	}

	events := make([]*event.Event, 0, len(payload.Embedded.Events))
	for _, item := range payload.Embedded.Events {
		if e := t.mapEvent(item); e != nil {
			events = append(events, e)
		}
	}
	return OK(validOnly(events))
}

// Discovery API response shape, reduced to the fields mapped below.
type discoveryResponse struct {
	Embedded struct {
		Events []discoveryEvent `json:"events"`
	} `json:"_embedded"`
}

type discoveryEvent struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Info        string `json:"info"`
	Description string `json:"description"`
	Dates       struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []discoveryVenue `json:"venues"`
	} `json:"_embedded"`
}

type discoveryVenue struct {
	Name    string `json:"name"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	PostalCode string `json:"postalCode"`
	City       struct {
		Name string `json:"name"`
	} `json:"city"`
}

func (t *Ticketmaster) mapEvent(item discoveryEvent) *event.Event {
	e := event.New(item.Name, t.name)
	if e == nil {
		return nil
	}

	// Most specific date field wins; records without either stay undated.
	if start := parseDiscoveryTime(item.Dates.Start.DateTime); start != nil {
		e.Start = start
	} else if item.Dates.Start.LocalDate != "" {
		if d, err := time.Parse("2006-01-02", item.Dates.Start.LocalDate); err == nil {
			e.Start = &d
		}
	}

	if len(item.Embedded.Venues) > 0 {
		v := item.Embedded.Venues[0]
		e.Venue = strings.TrimSpace(v.Name)
		parts := make([]string, 0, 3)
		for _, p := range []string{v.Address.Line1, v.PostalCode, v.City.Name} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		e.Address = strings.Join(parts, ", ")
	}

	if len(item.Classifications) > 0 && item.Classifications[0].Segment.Name != "" {
		e.Category = strings.ToLower(item.Classifications[0].Segment.Name)
	}

	if len(item.PriceRanges) > 0 {
		min := item.PriceRanges[0]
		for _, pr := range item.PriceRanges[1:] {
			if pr.Min < min.Min {
				min = pr
			}
		}
		e.Price = strings.TrimSpace(fmt.Sprintf("%.2f %s", min.Min, min.Currency))
	}

	desc := item.Info
	if strings.TrimSpace(desc) == "" {
		desc = item.Description
	}
	e.Description = event.Truncate(desc)
	e.URL = item.URL
	return e
}

func parseDiscoveryTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
