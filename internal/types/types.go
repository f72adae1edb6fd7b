package types

import (
	"fmt"
	"strconv"
)

// Uncategorized is the category label for journals without a VAK category.
const Uncategorized = "без категории"

// Header is the fixed column header of every corpus and checkpoint file.
var Header = []string{
	"Название журнала",
	"Ссылка на журнал",
	"Категория ВАК",
	"Уровень белого списка",
}

// JournalRecord is one harvested catalog row. Category and Tier always hold
// normalized labels, never raw catalog codes.
type JournalRecord struct {
	Title    string
	Link     string
	Category string
	Tier     string
}

// Cells returns the record as a corpus row in header order.
func (r JournalRecord) Cells() []string {
	return []string{r.Title, r.Link, r.Category, r.Tier}
}

// CategoryPair is one (raw category, raw tier) combination of the catalog listing.
type CategoryPair struct {
	RawCategory int
	RawTier     int
}

func (p CategoryPair) String() string {
	return fmt.Sprintf("vak=%d white=%d", p.RawCategory, p.RawTier)
}

// Labels returns the normalized category and tier labels for the pair.
func (p CategoryPair) Labels() (category, tier string, err error) {
	category, err = AdjustCategory(p.RawCategory)
	if err != nil {
		return "", "", err
	}
	tier, err = AdjustTier(p.RawTier)
	if err != nil {
		return "", "", err
	}
	return category, tier, nil
}

// Record builds a JournalRecord for an extracted entry under the given labels.
func (e Entry) Record(category, tier string) JournalRecord {
	return JournalRecord{Title: e.Title, Link: e.Link, Category: category, Tier: tier}
}

// Entry is a (title, link) tuple read from one listing row.
type Entry struct {
	Title string
	Link  string
}

// AdjustCategory maps a raw catalog category code (1..4) to its public label.
// Code 1 is the uncategorized bucket; the rest shift down by one.
func AdjustCategory(raw int) (string, error) {
	if raw < 1 || raw > 4 {
		return "", fmt.Errorf("raw category code %d out of range 1..4", raw)
	}
	if raw == 1 {
		return Uncategorized, nil
	}
	return strconv.Itoa(raw - 1), nil
}

// AdjustTier maps a raw white-list code (2..5) to its public tier label (1..4).
func AdjustTier(raw int) (string, error) {
	if raw < 2 || raw > 5 {
		return "", fmt.Errorf("raw tier code %d out of range 2..5", raw)
	}
	return strconv.Itoa(raw - 1), nil
}

// Row is a loosely typed corpus row as read back from storage. Missing cells
// are empty strings.
type Row struct {
	Title    string
	Link     string
	Category string
	Tier     string
}

// ParseRow converts raw cells into a Row, padding short rows. It reports false
// for rows with no content at all.
func ParseRow(cells []string) (Row, bool) {
	padded := make([]string, 4)
	copy(padded, cells)
	empty := true
	for _, c := range padded {
		if c != "" {
			empty = false
			break
		}
	}
	if empty {
		return Row{}, false
	}
	return Row{Title: padded[0], Link: padded[1], Category: padded[2], Tier: padded[3]}, true
}

// Cells returns the row in header order.
func (r Row) Cells() []string {
	return []string{r.Title, r.Link, r.Category, r.Tier}
}
