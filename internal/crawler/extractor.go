package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/go-scripts/journals/internal/browser"
	"github.com/go-scripts/journals/internal/challenge"
	"github.com/go-scripts/journals/internal/types"
)

const (
	// RowSelector matches one journal row of the catalog listing.
	RowSelector = `tr[id^="a"]`
	// TotalSelector matches the element carrying the result count.
	TotalSelector = ".redref"
)

// Gate waits out an interactive challenge on the current page.
type Gate interface {
	AwaitClear(ctx context.Context, src challenge.Source) error
}

// PageExtractor reads the (title, link) entries of one listing page.
type PageExtractor interface {
	Extract(ctx context.Context, s browser.Session, pageURL string) ([]types.Entry, error)
}

// navigator loads pages, throttled and bounded.
type navigator struct {
	throttle *rate.Limiter
	timeout  time.Duration
}

func (n navigator) navigate(ctx context.Context, s browser.Session, pageURL string) error {
	if n.throttle != nil {
		if err := n.throttle.Wait(ctx); err != nil {
			return err
		}
	}
	navCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	return s.Navigate(navCtx, pageURL)
}

// waitFor blocks until selector is present, for at most timeout.
func waitFor(ctx context.Context, s browser.Session, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.WaitPresent(waitCtx, selector)
}

// Extractor is the PageExtractor for catalog listing pages
type Extractor struct {
	Gate            Gate
	NavigateTimeout time.Duration
	PageLoadTimeout time.Duration
	Throttle        *rate.Limiter
	Logger          *log.Logger
}

func (e *Extractor) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

// Extract loads pageURL and returns the entries that could be read. Page
// load failures are logged and yield no entries and no error; only a
// challenge timeout or a fatal session error is returned.
func (e *Extractor) Extract(ctx context.Context, s browser.Session, pageURL string) ([]types.Entry, error) {
	nav := navigator{throttle: e.Throttle, timeout: e.NavigateTimeout}
	if err := nav.navigate(ctx, s, pageURL); err != nil {
		return e.pageFailed(ctx, pageURL, err)
	}

	if err := e.Gate.AwaitClear(ctx, s); err != nil {
		if errors.Is(err, challenge.ErrTimeout) {
			return nil, err
		}
		return e.pageFailed(ctx, pageURL, err)
	}

	if err := waitFor(ctx, s, RowSelector, e.PageLoadTimeout); err != nil {
		return e.pageFailed(ctx, pageURL, fmt.Errorf("waiting for listing rows: %w", err))
	}

	src, err := s.HTML(ctx)
	if err != nil {
		return e.pageFailed(ctx, pageURL, err)
	}

	entries, rowErrs, err := ParseListing(src, pageURL)
	if err != nil {
		return e.pageFailed(ctx, pageURL, err)
	}
	for _, rowErr := range rowErrs {
		var re *RowError
		if errors.As(rowErr, &re) {
			e.logger().Warn("skipping listing row", "url", pageURL, "row", re.Index, "err", re.Err)
		}
	}
	return entries, nil
}

func (e *Extractor) pageFailed(ctx context.Context, pageURL string, err error) ([]types.Entry, error) {
	if isFatal(ctx, err) {
		return nil, err
	}
	e.logger().Warn("page skipped", "err", &PageLoadError{URL: pageURL, Err: err})
	return nil, nil
}

// ParseListing reads every listing row of a rendered page. Rows that cannot
// be read are returned as RowErrors alongside the entries that could.
// Relative links are resolved against pageURL.
func ParseListing(src, pageURL string) ([]types.Entry, []error, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page URL: %w", err)
	}
	doc, err := parseDocument(src)
	if err != nil {
		return nil, nil, err
	}

	var entries []types.Entry
	var rowErrs []error
	doc.Find(RowSelector).Each(func(i int, row *goquery.Selection) {
		entry, err := parseRow(row, base)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Index: i, Err: err})
			return
		}
		entries = append(entries, entry)
	})
	return entries, rowErrs, nil
}

func parseRow(row *goquery.Selection, base *url.URL) (types.Entry, error) {
	a := row.Find("a").First()
	if a.Length() == 0 {
		return types.Entry{}, errNoLink
	}

	href, ok := a.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return types.Entry{}, errNoHref
	}
	link, err := base.Parse(href)
	if err != nil {
		return types.Entry{}, fmt.Errorf("bad href %q: %w", href, err)
	}

	title := strings.TrimSpace(a.Text())
	if title == "" {
		return types.Entry{}, errNoTitle
	}
	return types.Entry{Title: title, Link: link.String()}, nil
}

// ParseTotalCount reads the number of matching journals from the first
// result-count element: the fourth word of its text.
func ParseTotalCount(src string) (int, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return 0, err
	}
	el := doc.Find(TotalSelector).First()
	if el.Length() == 0 {
		return 0, fmt.Errorf("no %s element", TotalSelector)
	}

	text := el.Text()
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return 0, fmt.Errorf("expected at least 4 words in %q", text)
	}
	n, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative total %d", n)
	}
	return n, nil
}

func parseDocument(src string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}
