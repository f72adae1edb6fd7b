package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/journals/internal/browser"
	"github.com/go-scripts/journals/internal/queue"
	"github.com/go-scripts/journals/internal/types"
)

// Persister writes the full record sequence to a named file.
type Persister interface {
	Persist(records []types.JournalRecord, filename string) error
}

// Report summarizes a finished harvest.
type Report struct {
	Records     []types.JournalRecord
	Pairs       []PairResult
	Checkpoints int
}

// Harvester drives one browser session over every category pair
type Harvester struct {
	Open            browser.Opener
	Walker          CategoryWalker
	Writer          Persister
	Categories      []int
	Tiers           []int
	CheckpointEvery int
	CheckpointFile  string
	CorpusFile      string
	Logger          *log.Logger
}

func (h *Harvester) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

// Run walks every category pair, category-major, checkpointing as the record
// count crosses each CheckpointEvery boundary. The session is closed exactly
// once on every path. On a fatal error the accumulated records are dropped;
// earlier checkpoints stay on disk.
func (h *Harvester) Run(ctx context.Context) (report *Report, err error) {
	s, err := h.Open(ctx)
	if err != nil {
		var sessionErr *browser.SessionError
		if !errors.As(err, &sessionErr) {
			err = &browser.SessionError{Err: err}
		}
		return nil, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			h.logger().Warn("failed to close browser session", "err", cerr)
		}
	}()

	state := NewState(h.CheckpointEvery)
	report = &Report{}
	q := queue.New(h.Categories, h.Tiers)

	for pair, ok := q.Next(); ok; pair, ok = q.Next() {
		res, err := h.Walker.Walk(ctx, s, pair)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", pair, err)
		}
		report.Pairs = append(report.Pairs, res)

		if state.Append(res.Records...) {
			if err := h.Writer.Persist(state.Records(), h.CheckpointFile); err != nil {
				return nil, fmt.Errorf("checkpoint: %w", err)
			}
			report.Checkpoints++
		}
		h.logger().Info("category pair done",
			"pair", pair,
			"records", len(res.Records),
			"total", state.Len(),
			"remaining", q.Len())
	}

	report.Records = state.Records()
	return report, nil
}

// Harvest runs the full harvest and writes the final corpus file.
func (h *Harvester) Harvest(ctx context.Context) (*Report, error) {
	report, err := h.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.Writer.Persist(report.Records, h.CorpusFile); err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return report, nil
}
