package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/journals/internal/challenge"
	"github.com/go-scripts/journals/internal/types"
)

const testBaseURL = "https://catalog.test/titles.asp"

var quietLogger = log.New(io.Discard)

// fakeSite is a browser.Session serving canned documents by URL.
type fakeSite struct {
	pages       map[string]string
	navErr      map[string]error
	current     string
	navigations []string
	closed      int
}

func newFakeSite() *fakeSite {
	return &fakeSite{pages: map[string]string{}, navErr: map[string]error{}}
}

func (f *fakeSite) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.navigations = append(f.navigations, url)
	if err := f.navErr[url]; err != nil {
		return err
	}
	page, ok := f.pages[url]
	if !ok {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	f.current = page
	return nil
}

func (f *fakeSite) WaitPresent(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.current))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (f *fakeSite) HTML(ctx context.Context) (string, error) {
	return f.current, ctx.Err()
}

func (f *fakeSite) Close() error {
	f.closed++
	return nil
}

// gateFunc adapts a function to the Gate interface.
type gateFunc func(ctx context.Context, src challenge.Source) error

func (g gateFunc) AwaitClear(ctx context.Context, src challenge.Source) error {
	return g(ctx, src)
}

var openGate = gateFunc(func(context.Context, challenge.Source) error { return nil })

func listingRow(i int, title, href string) string {
	if href == "" {
		return fmt.Sprintf(`<tr id="a%d"><td>%s</td></tr>`, i, title)
	}
	return fmt.Sprintf(`<tr id="a%d"><td><a href="%s">%s</a></td></tr>`, i, href, title)
}

// listingPage renders a catalog page with a result count and the given rows.
func listingPage(total int, rows ...string) string {
	return fmt.Sprintf(`<html><body>
<span class="redref">Всего найдено журналов: %d</span>
<table>
<tr><th>Название</th></tr>
%s
</table>
</body></html>`, total, strings.Join(rows, "\n"))
}

// pageOf renders n well-formed rows, numbered from first.
func pageOf(total, first, n int) string {
	rows := make([]string, n)
	for i := range rows {
		id := first + i
		rows[i] = listingRow(id, fmt.Sprintf("Journal %d", id), fmt.Sprintf("/title_about.asp?id=%d", id))
	}
	return listingPage(total, rows...)
}

func newTestExtractor(gate Gate) *Extractor {
	return &Extractor{Gate: gate, PageLoadTimeout: 50 * time.Millisecond, Logger: quietLogger}
}

func newTestWalker(ex PageExtractor, gate Gate) *Walker {
	return &Walker{
		BaseURL:         testBaseURL,
		PageSize:        100,
		PageLoadTimeout: 50 * time.Millisecond,
		Gate:            gate,
		Extractor:       ex,
		Logger:          quietLogger,
	}
}

func mustPageURL(w *Walker, pair types.CategoryPair, page int) string {
	u, err := w.PageURL(pair, page)
	if err != nil {
		panic(err)
	}
	return u
}
