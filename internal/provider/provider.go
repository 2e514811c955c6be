package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// Per-call budgets. A slow source only delays its own result.
const (
	fetchTimeout  = 15 * time.Second
	renderTimeout = 30 * time.Second
)

// Scraped pages vary output by user agent and Accept-Language, so requests
// present as a regular desktop browser.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Result is the value-typed outcome of one adapter invocation. Failure is a
// status string, never a raised error.
type Result struct {
	Events []*event.Event
	Status string
}

// OK wraps successfully extracted events.
func OK(events []*event.Event) Result {
	return Result{Events: events, Status: fmt.Sprintf("ok(%d)", len(events))}
}

// Skip marks an expected no-op, e.g. a missing credential.
func Skip(reason string) Result {
	return Result{Status: fmt.Sprintf("skip(%s)", reason)}
}

// Errorf marks a fault scoped to this one source.
func Errorf(format string, args ...any) Result {
	return Result{Status: fmt.Sprintf("error(%s)", fmt.Sprintf(format, args...))}
}

// Failed reports whether the result carries an error status.
func (r Result) Failed() bool { return strings.HasPrefix(r.Status, "error(") }

// Skipped reports whether the adapter declined to run.
func (r Result) Skipped() bool { return strings.HasPrefix(r.Status, "skip(") }

// Provider adapts one external source to the canonical event model.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, r daterange.Range) Result
}

// NewFromConfig builds the adapter for one configured source.
func NewFromConfig(src config.Source, cfg *config.Config) (Provider, error) {
	switch src.Type {
	case config.TypeTicketmaster:
		return NewTicketmaster(src, cfg), nil
	case config.TypeStatic:
		return NewStatic(src, cfg), nil
	case config.TypeMunicipal:
		return NewMunicipal(src, cfg), nil
	case config.TypeRendered:
		return NewRendered(src, cfg), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}

// fetchDocument GETs a page with browser-like headers and parses it. The
// returned base URL resolves relative links found in the document.
func fetchDocument(ctx context.Context, client *http.Client, pageURL, locale string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	return doc, base, nil
}

// validOnly drops records violating the model invariants before they leave
// the adapter boundary.
func validOnly(events []*event.Event) []*event.Event {
	kept := events[:0]
	for _, e := range events {
		if e.Valid() {
			kept = append(kept, e)
		}
	}
	return kept
}
