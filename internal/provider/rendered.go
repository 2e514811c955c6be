package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
	"github.com/stockii/event-skill-for-openclaw/internal/extract"
)

const (
	// frameWait bounds the best-effort wait for the booking widget's frame;
	// running out is not fatal, extraction proceeds on whatever is there.
	frameWait = 8 * time.Second
	// settleDelay precedes the second extraction pass and the initial
	// post-load sample: the widget is injected by onload JavaScript.
	settleDelay = 2 * time.Second
	framePoll   = 500 * time.Millisecond
)

// Rendered drives a headless browser against pages whose event listing only
// materializes after client-side script execution, typically inside an
// embedded third-party widget frame.
type Rendered struct {
	name         string
	pageURL      string
	widgetOrigin string
	displayName  string
	loc          *time.Location
}

func NewRendered(src config.Source, cfg *config.Config) *Rendered {
	return &Rendered{
		name:         src.Name,
		pageURL:      src.URL,
		widgetOrigin: src.WidgetOrigin,
		displayName:  src.DisplayName,
		loc:          cfg.Location(),
	}
}

func (p *Rendered) Name() string { return p.name }

func (p *Rendered) Fetch(ctx context.Context, _ daterange.Range) Result {
	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	// The allocator and tab are scoped resources: the deferred cancels
	// release the browser on every exit path.
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(p.pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
	); err != nil {
		return Errorf("render engine: %v", err)
	}

	// First pass: inside the widget frame when one shows up in time,
	// otherwise the main document.
	inFrame := false
	if frameURL := p.waitForFrame(tabCtx); frameURL != "" {
		if err := chromedp.Run(tabCtx,
			chromedp.Navigate(frameURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
		); err == nil {
			inFrame = true
		}
	}

	html, err := outerHTML(tabCtx)
	if err != nil {
		return Errorf("reading document: %v", err)
	}
	events := p.extractFromHTML(html, extract.WidgetContainerPatterns)

	// Second pass: top-level document, looser patterns, after a settle
	// delay. Runs once, only when the first pass came up empty.
	if len(events) == 0 {
		tasks := chromedp.Tasks{chromedp.Sleep(settleDelay)}
		if inFrame {
			tasks = append(chromedp.Tasks{
				chromedp.Navigate(p.pageURL),
				chromedp.WaitReady("body", chromedp.ByQuery),
			}, tasks...)
		}
		if err := chromedp.Run(tabCtx, tasks); err != nil {
			return Errorf("render engine: %v", err)
		}
		if html, err = outerHTML(tabCtx); err != nil {
			return Errorf("reading document: %v", err)
		}
		events = p.extractFromHTML(html, extract.FallbackContainerPatterns)
	}
	return OK(events)
}

// waitForFrame polls for an iframe whose src matches the widget origin,
// bounded by frameWait. Returns "" when none appears; callers carry on with
// the main document.
func (p *Rendered) waitForFrame(ctx context.Context) string {
	if p.widgetOrigin == "" {
		return ""
	}
	sel := `iframe[src*=` + strconv.Quote(p.widgetOrigin) + `]`
	deadline := time.Now().Add(frameWait)
	for time.Now().Before(deadline) {
		var src string
		var ok bool
		err := chromedp.Run(ctx,
			chromedp.AttributeValue(sel, "src", &src, &ok, chromedp.ByQuery, chromedp.AtLeast(0)),
		)
		if err != nil {
			return ""
		}
		if ok && strings.TrimSpace(src) != "" {
			return src
		}
		select {
		case <-ctx.Done():
			return ""
		case <-time.After(framePoll):
		}
	}
	return ""
}

func outerHTML(ctx context.Context) (string, error) {
	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// extractFromHTML runs the shared extraction cascade over a rendered
// document snapshot: JSON-LD first, then heuristic probing where the
// pattern yielding the most containers wins. Venue defaults to the source's
// display name; widget markup rarely repeats the host on every card.
func (p *Rendered) extractFromHTML(html string, patterns []string) []*event.Event {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(p.pageURL)
	if err != nil {
		base = nil
	}

	events := extract.Cascade(doc, base, p.name,
		extract.JSONLD{Loc: p.loc},
		extract.Heuristic{Patterns: patterns, MostMatches: true, Loc: p.loc},
	)
	for _, e := range events {
		if e.Venue == "" {
			e.Venue = p.displayName
		}
	}
	return validOnly(events)
}
