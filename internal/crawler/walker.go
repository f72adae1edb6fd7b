package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/go-scripts/journals/internal/browser"
	"github.com/go-scripts/journals/internal/challenge"
	"github.com/go-scripts/journals/internal/progress"
	"github.com/go-scripts/journals/internal/types"
)

// PairResult is the outcome of walking one category pair.
type PairResult struct {
	Pair     types.CategoryPair
	Category string
	Tier     string
	Total    int
	Pages    int
	Fetched  int
	Records  []types.JournalRecord
	// Err is the non-fatal reason the pair stopped early, if any.
	Err error
}

// CategoryWalker harvests every page of one category pair.
type CategoryWalker interface {
	Walk(ctx context.Context, s browser.Session, pair types.CategoryPair) (PairResult, error)
}

// PageCount is the number of listing pages holding total entries.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Walker walks the paginated listing of a category pair
type Walker struct {
	BaseURL         string
	PageSize        int
	NavigateTimeout time.Duration
	PageLoadTimeout time.Duration
	Gate            Gate
	Extractor       PageExtractor
	Progress        *progress.Tracker
	Throttle        *rate.Limiter
	Logger          *log.Logger
}

func (w *Walker) logger() *log.Logger {
	if w.Logger == nil {
		return log.Default()
	}
	return w.Logger
}

// PageURL builds the listing URL for a pair and 1-based page number.
func (w *Walker) PageURL(pair types.CategoryPair, page int) (string, error) {
	u, err := url.Parse(w.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("vak", strconv.Itoa(pair.RawCategory))
	q.Set("white", strconv.Itoa(pair.RawTier))
	q.Set("pagenum", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Walk fetches the first page to learn the result count, then every page in
// order. Failures confined to the pair are logged and reported in
// PairResult.Err; the returned error is reserved for fatal conditions.
func (w *Walker) Walk(ctx context.Context, s browser.Session, pair types.CategoryPair) (PairResult, error) {
	res := PairResult{Pair: pair}

	category, tier, err := pair.Labels()
	if err != nil {
		return res, err
	}
	res.Category, res.Tier = category, tier
	logger := w.logger().With("category", category, "tier", tier)

	total, err := w.totalCount(ctx, s, pair)
	if err != nil {
		if isFatal(ctx, err) {
			return res, err
		}
		logger.Warn("category pair skipped", "pair", pair, "err", err)
		res.Err = err
		return res, nil
	}
	res.Total = total
	res.Pages = PageCount(total, w.PageSize)
	logger.Info("walking category pair", "pair", pair, "total", total, "pages", res.Pages)

	if w.Progress != nil {
		w.Progress.Start(pair.String(), res.Pages)
	}

	for page := 1; page <= res.Pages; page++ {
		pageURL, err := w.PageURL(pair, page)
		if err != nil {
			return res, err
		}

		entries, err := w.Extractor.Extract(ctx, s, pageURL)
		if err != nil {
			if errors.Is(err, challenge.ErrTimeout) && !isFatal(ctx, err) {
				logger.Warn("challenge not solved, abandoning category pair",
					"pair", pair, "page", page, "url", pageURL, "err", err)
				res.Err = err
				break
			}
			return res, err
		}

		for _, e := range entries {
			res.Records = append(res.Records, e.Record(category, tier))
		}
		res.Fetched++
		if w.Progress != nil {
			w.Progress.Advance()
		}
	}

	return res, nil
}

func (w *Walker) totalCount(ctx context.Context, s browser.Session, pair types.CategoryPair) (int, error) {
	firstURL, err := w.PageURL(pair, 1)
	if err != nil {
		return 0, err
	}

	nav := navigator{throttle: w.Throttle, timeout: w.NavigateTimeout}
	if err := nav.navigate(ctx, s, firstURL); err != nil {
		return 0, &PageLoadError{URL: firstURL, Err: err}
	}
	if err := w.Gate.AwaitClear(ctx, s); err != nil {
		return 0, err
	}
	if err := waitFor(ctx, s, TotalSelector, w.PageLoadTimeout); err != nil {
		return 0, &TotalCountError{URL: firstURL, Err: err}
	}

	src, err := s.HTML(ctx)
	if err != nil {
		return 0, &PageLoadError{URL: firstURL, Err: err}
	}
	total, err := ParseTotalCount(src)
	if err != nil {
		return 0, &TotalCountError{URL: firstURL, Err: err}
	}
	return total, nil
}
