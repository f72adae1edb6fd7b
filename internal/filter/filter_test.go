package filter

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/journals/internal/types"
	"github.com/go-scripts/journals/internal/writer"
)

var corpus = []types.JournalRecord{
	{Title: "A", Link: "https://elibrary.ru/title_about.asp?id=1", Category: "1", Tier: "1"},
	{Title: "B", Link: "https://elibrary.ru/title_about.asp?id=2", Category: "2", Tier: "3"},
	{Title: "C", Link: "https://elibrary.ru/title_about.asp?id=3", Category: types.Uncategorized, Tier: "1"},
	{Title: "D", Link: "https://elibrary.ru/title_about.asp?id=4", Category: "3", Tier: "4"},
	{Title: "E", Link: "https://elibrary.ru/title_about.asp?id=5", Category: "1", Tier: "2"},
}

func TestValidate(t *testing.T) {
	assert.Error(t, Criteria{Tiers: []string{"1"}}.Validate())
	assert.Error(t, Criteria{Categories: []string{"1"}}.Validate())
	assert.NoError(t, Criteria{Categories: []string{"1"}, Tiers: []string{"1"}}.Validate())
}

func TestMatch(t *testing.T) {
	c := Criteria{Categories: []string{"1", types.Uncategorized}, Tiers: []string{"1"}}

	tests := []struct {
		name string
		row  types.Row
		want bool
	}{
		{"both selected", types.Row{Category: "1", Tier: "1"}, true},
		{"tier not selected", types.Row{Category: "1", Tier: "2"}, false},
		{"category not selected", types.Row{Category: "2", Tier: "1"}, false},
		{"uncategorized label", types.Row{Category: types.Uncategorized, Tier: "1"}, true},
		{"empty category counts as uncategorized", types.Row{Category: "", Tier: "1"}, true},
		{"empty tier never matches", types.Row{Category: "1", Tier: ""}, false},
		{"no fuzzy matching", types.Row{Category: " 1", Tier: "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Match(tt.row))
		})
	}
}

func TestNewCriteria(t *testing.T) {
	c, err := NewCriteria([]string{"к1", "none", "1", "Без К"}, []string{"у4", "2", "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", types.Uncategorized}, c.Categories)
	assert.Equal(t, []string{"2", "4"}, c.Tiers)

	_, err = NewCriteria([]string{"4"}, []string{"1"})
	assert.Error(t, err)
	_, err = NewCriteria([]string{"1"}, []string{"у5"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "journals.xlsx")
	out := filepath.Join(dir, "filtered_journals.xlsx")
	w := writer.New(log.New(io.Discard))
	require.NoError(t, w.Persist(corpus, in))

	n, err := Run(w, in, out, Criteria{Categories: []string{"1", types.Uncategorized}, Tiers: []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := writer.Read(out)
	require.NoError(t, err)
	want := []types.Row{
		{Title: "A", Link: "https://elibrary.ru/title_about.asp?id=1", Category: "1", Tier: "1"},
		{Title: "C", Link: "https://elibrary.ru/title_about.asp?id=3", Category: types.Uncategorized, Tier: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRunNoMatches(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "journals.csv")
	out := filepath.Join(dir, "filtered.csv")
	w := writer.New(log.New(io.Discard))
	require.NoError(t, w.Persist(corpus, in))

	n, err := Run(w, in, out, Criteria{Categories: []string{"3"}, Tiers: []string{"1"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := writer.Read(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunMissingCorpus(t *testing.T) {
	dir := t.TempDir()
	w := writer.New(log.New(io.Discard))

	_, err := Run(w, filepath.Join(dir, "journals.xlsx"), filepath.Join(dir, "out.xlsx"),
		Criteria{Categories: []string{"1"}, Tiers: []string{"1"}})
	assert.ErrorIs(t, err, ErrNoCorpus)
}

func TestRunEmptySelection(t *testing.T) {
	w := writer.New(log.New(io.Discard))
	_, err := Run(w, "journals.xlsx", "out.xlsx", Criteria{Tiers: []string{"1"}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCorpus)
}

func TestApplyNormalizesEmptyCategory(t *testing.T) {
	c := Criteria{Categories: []string{types.Uncategorized}, Tiers: []string{"2"}}
	got := c.Apply([]types.Row{
		{Title: "X", Tier: "2"},
		{Title: "Y", Category: "1", Tier: "2"},
	})
	assert.Equal(t, []types.Row{{Title: "X", Category: types.Uncategorized, Tier: "2"}}, got)
}
