package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/extract"
)

// Static scrapes a plain HTML listing page. Extraction cascades: JSON-LD
// first, heuristic DOM scanning only when no structured data yields events.
type Static struct {
	name    string
	pageURL string
	locale  string
	loc     *time.Location
	client  *http.Client
}

func NewStatic(src config.Source, cfg *config.Config) *Static {
	return &Static{
		name:    src.Name,
		pageURL: src.URL,
		locale:  cfg.Locale,
		loc:     cfg.Location(),
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Fetch(ctx context.Context, _ daterange.Range) Result {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	doc, base, err := fetchDocument(ctx, s.client, s.pageURL, s.locale)
	if err != nil {
		return Errorf("%v", err)
	}

	events := extract.Cascade(doc, base, s.name,
		extract.JSONLD{Loc: s.loc},
		extract.Heuristic{Loc: s.loc},
	)
	return OK(validOnly(events))
}
