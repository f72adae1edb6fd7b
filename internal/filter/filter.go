// Package filter selects corpus rows by category and white-list tier.
package filter

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-scripts/journals/internal/types"
	"github.com/go-scripts/journals/internal/writer"
)

// ErrNoCorpus is returned when the input corpus file does not exist.
var ErrNoCorpus = errors.New("corpus file not found")

// Categories and Tiers list the selectable labels in display order.
var (
	Categories = []string{"1", "2", "3", types.Uncategorized}
	Tiers      = []string{"1", "2", "3", "4"}
)

// Criteria is the set of category and tier labels a row must match.
type Criteria struct {
	Categories []string
	Tiers      []string
}

// Validate requires a non-empty selection in both groups.
func (c Criteria) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("select at least one VAK category")
	}
	if len(c.Tiers) == 0 {
		return errors.New("select at least one white-list tier")
	}
	return nil
}

// Match reports whether the row's labels are both selected. An empty
// category cell counts as uncategorized.
func (c Criteria) Match(row types.Row) bool {
	category := row.Category
	if category == "" {
		category = types.Uncategorized
	}
	return contains(c.Categories, category) && contains(c.Tiers, row.Tier)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ParseCategory normalizes a category label as typed by a user: 1, к1, none,
// без к, or the uncategorized label itself.
func ParseCategory(s string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "none", "без к", types.Uncategorized:
		return types.Uncategorized, nil
	}
	v = strings.TrimPrefix(v, "к")
	if v == "1" || v == "2" || v == "3" {
		return v, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseTier normalizes a tier label: 1..4 or у1..у4.
func ParseTier(s string) (string, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "у")
	if v == "1" || v == "2" || v == "3" || v == "4" {
		return v, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// NewCriteria parses user-supplied labels, dropping duplicates.
func NewCriteria(categories, tiers []string) (Criteria, error) {
	var c Criteria
	for _, s := range categories {
		v, err := ParseCategory(s)
		if err != nil {
			return Criteria{}, err
		}
		if !contains(c.Categories, v) {
			c.Categories = append(c.Categories, v)
		}
	}
	for _, s := range tiers {
		v, err := ParseTier(s)
		if err != nil {
			return Criteria{}, err
		}
		if !contains(c.Tiers, v) {
			c.Tiers = append(c.Tiers, v)
		}
	}
	sort.Strings(c.Tiers)
	return c, nil
}

// Apply returns the rows matching c, in input order. Empty category cells
// come back as the uncategorized label.
func (c Criteria) Apply(rows []types.Row) []types.Row {
	var out []types.Row
	for _, r := range rows {
		if !c.Match(r) {
			continue
		}
		if r.Category == "" {
			r.Category = types.Uncategorized
		}
		out = append(out, r)
	}
	return out
}

// Run reads the corpus at in, writes the matching rows to out under the
// standard header and returns how many rows matched.
func Run(w *writer.FileWriter, in, out string, c Criteria) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if _, err := os.Stat(in); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNoCorpus, in)
		}
		return 0, err
	}

	rows, err := writer.Read(in)
	if err != nil {
		return 0, err
	}
	matched := c.Apply(rows)
	if err := w.WriteRows(matched, out); err != nil {
		return 0, err
	}
	return len(matched), nil
}
