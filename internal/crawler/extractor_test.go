package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/journals/internal/challenge"
	"github.com/go-scripts/journals/internal/types"
)

const pageURL = testBaseURL + "?pagenum=1&vak=1&white=2"

func TestExtractSkipsMalformedRows(t *testing.T) {
	var rows []string
	for i := 0; i < 10; i++ {
		rows = append(rows, listingRow(i, fmt.Sprintf("Journal %d", i), fmt.Sprintf("/title_about.asp?id=%d", i)))
		if i == 3 {
			rows = append(rows, listingRow(100, "no link here", ""))
		}
		if i == 7 {
			rows = append(rows, `<tr id="a101"><td><a href="/title_about.asp?id=101">   </a></td></tr>`)
		}
	}
	site := newFakeSite()
	site.pages[pageURL] = listingPage(12, rows...)

	entries, err := newTestExtractor(openGate).Extract(context.Background(), site, pageURL)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, types.Entry{Title: "Journal 0", Link: "https://catalog.test/title_about.asp?id=0"}, entries[0])
	assert.Equal(t, "Journal 9", entries[9].Title)
}

func TestExtractNavigationFailure(t *testing.T) {
	site := newFakeSite()
	site.navErr[pageURL] = errors.New("net::ERR_CONNECTION_RESET")

	entries, err := newTestExtractor(openGate).Extract(context.Background(), site, pageURL)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractRowsNeverRender(t *testing.T) {
	site := newFakeSite()
	site.pages[pageURL] = `<html><body><p>Service temporarily unavailable</p></body></html>`

	entries, err := newTestExtractor(openGate).Extract(context.Background(), site, pageURL)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractChallengeTimeout(t *testing.T) {
	site := newFakeSite()
	site.pages[pageURL] = pageOf(1, 0, 1)
	gate := gateFunc(func(context.Context, challenge.Source) error {
		return fmt.Errorf("%w after 2m5s", challenge.ErrTimeout)
	})

	entries, err := newTestExtractor(gate).Extract(context.Background(), site, pageURL)
	assert.ErrorIs(t, err, challenge.ErrTimeout)
	assert.Empty(t, entries)
}

func TestExtractCancelled(t *testing.T) {
	site := newFakeSite()
	site.pages[pageURL] = pageOf(1, 0, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(openGate).Extract(ctx, site, pageURL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractWithRealGate(t *testing.T) {
	site := newFakeSite()
	site.pages[pageURL] = `<html><body><form id="captcha">Подтвердите, что вы не робот</form></body></html>`
	gate := &challenge.Gate{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond, Logger: quietLogger}

	_, err := newTestExtractor(gate).Extract(context.Background(), site, pageURL)
	assert.ErrorIs(t, err, challenge.ErrTimeout)
}

func TestParseListingRowErrors(t *testing.T) {
	src := listingPage(3,
		listingRow(1, "Good", "https://elibrary.ru/title_about.asp?id=1"),
		listingRow(2, "Missing", ""),
		`<tr id="a3"><td><a>No href</a></td></tr>`,
		`<tr id="b4"><td><a href="/x">Not a journal row</a></td></tr>`,
	)

	entries, rowErrs, err := ParseListing(src, pageURL)
	require.NoError(t, err)
	assert.Equal(t, []types.Entry{{Title: "Good", Link: "https://elibrary.ru/title_about.asp?id=1"}}, entries)
	require.Len(t, rowErrs, 2)

	var re *RowError
	require.ErrorAs(t, rowErrs[0], &re)
	assert.Equal(t, 1, re.Index)
	assert.ErrorIs(t, rowErrs[0], errNoLink)
	assert.ErrorIs(t, rowErrs[1], errNoHref)
}

func TestParseTotalCount(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    int
		wantErr bool
	}{
		{"listing", listingPage(2985), 2985, false},
		{"nbsp separated", `<span class="redref">Всего найдено журналов:&nbsp;150</span>`, 150, false},
		{"missing element", `<html><body>nothing</body></html>`, 0, true},
		{"too few words", `<span class="redref">150 журналов</span>`, 0, true},
		{"not a number", `<span class="redref">Всего найдено журналов: много</span>`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTotalCount(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
