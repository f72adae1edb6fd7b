// Package ui is the terminal form for choosing which journals to extract
// from the corpus.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-scripts/journals/internal/types"
)

// ErrCancelled is returned by Select when the user quits the form.
var ErrCancelled = errors.New("selection cancelled")

// Action is what the user asked for when leaving the form.
type Action int

const (
	// ActionFilter extracts the selected journals from the corpus.
	ActionFilter Action = iota
	// ActionRefresh re-harvests the corpus.
	ActionRefresh
)

// Selection is the submitted form state, in corpus labels.
type Selection struct {
	Action     Action
	Categories []string
	Tiers      []string
}

type option struct {
	label string
	value string
}

type group struct {
	title   string
	options []option
	warning string
}

var groups = []group{
	{
		title: "Категория ВАК",
		options: []option{
			{"к1", "1"},
			{"к2", "2"},
			{"к3", "3"},
			{"без к", types.Uncategorized},
		},
		warning: "Выберите хотя бы одну категорию ВАК",
	},
	{
		title: "Уровень белого списка",
		options: []option{
			{"у1", "1"},
			{"у2", "2"},
			{"у3", "3"},
			{"у4", "4"},
		},
		warning: "Выберите хотя бы один уровень белого списка",
	},
}

// Form is the Bubble Tea model of the selection form. The cursor walks both
// checkbox groups as one list.
type Form struct {
	cursor    int
	checked   map[int]bool
	warning   string
	submitted bool
	cancelled bool
	action    Action
}

// NewForm returns a form with nothing selected.
func NewForm() *Form {
	return &Form{checked: make(map[int]bool)}
}

func optionCount() int {
	n := 0
	for _, g := range groups {
		n += len(g.options)
	}
	return n
}

// locate maps a flat index to its group and option.
func locate(i int) (gi, oi int) {
	for gi, g := range groups {
		if i < len(g.options) {
			return gi, i
		}
		i -= len(g.options)
	}
	return -1, -1
}

func (f *Form) Init() tea.Cmd {
	return nil
}

func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		f.cancelled = true
		return f, tea.Quit
	case "up", "k", "left", "h", "shift+tab":
		if f.cursor > 0 {
			f.cursor--
		}
	case "down", "j", "right", "l", "tab":
		if f.cursor < optionCount()-1 {
			f.cursor++
		}
	case " ", "x":
		f.checked[f.cursor] = !f.checked[f.cursor]
		f.warning = ""
	case "enter":
		return f.submit()
	case "u":
		f.submitted = true
		f.action = ActionRefresh
		return f, tea.Quit
	}
	return f, nil
}

func (f *Form) submit() (tea.Model, tea.Cmd) {
	sel := f.Selection()
	switch {
	case len(sel.Categories) == 0:
		f.warning = groups[0].warning
		return f, nil
	case len(sel.Tiers) == 0:
		f.warning = groups[1].warning
		return f, nil
	}
	f.submitted = true
	f.action = ActionFilter
	return f, tea.Quit
}

// Selection returns the currently checked values per group.
func (f *Form) Selection() Selection {
	sel := Selection{Action: f.action}
	for i := 0; i < optionCount(); i++ {
		if !f.checked[i] {
			continue
		}
		gi, oi := locate(i)
		v := groups[gi].options[oi].value
		if gi == 0 {
			sel.Categories = append(sel.Categories, v)
		} else {
			sel.Tiers = append(sel.Tiers, v)
		}
	}
	return sel
}

// Warning is the message shown after an incomplete submit, if any.
func (f *Form) Warning() string {
	return f.warning
}

func (f *Form) View() string {
	if f.submitted || f.cancelled {
		return ""
	}

	var b strings.Builder
	i := 0
	for gi, g := range groups {
		if gi > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(g.title) + "\n")
		var row []string
		for _, o := range g.options {
			box := "[ ]"
			if f.checked[i] {
				box = "[x]"
			}
			item := fmt.Sprintf("%s %s", box, o.label)
			if i == f.cursor {
				item = cursorStyle.Render("> " + item)
			} else {
				item = infoStyle.Render("  " + item)
			}
			row = append(row, item)
			i++
		}
		b.WriteString(strings.Join(row, "  ") + "\n")
	}

	if f.warning != "" {
		b.WriteString("\n" + warningStyle.Render(f.warning) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("arrows move • space toggle • enter get journals • u refresh journals • q quit"))
	return borderStyle.Render(b.String()) + "\n"
}

// Select runs the form on the given terminal streams until the user submits
// or quits.
func Select(in io.Reader, out io.Writer) (Selection, error) {
	p := tea.NewProgram(NewForm(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Selection{}, fmt.Errorf("selection form: %w", err)
	}
	f := final.(*Form)
	if f.cancelled || !f.submitted {
		return Selection{}, ErrCancelled
	}
	return f.Selection(), nil
}
