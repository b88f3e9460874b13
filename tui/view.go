package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/aguxez/dine/models"
	"github.com/aguxez/dine/preferences"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	openStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	closedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

func (m model) View() string {
	var body string
	switch m.view {
	case signedOutView:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.notice + "\n\n" + mutedStyle.Render("q to quit"))
	case profileView:
		body = m.profileView()
	default:
		body = m.scheduleView()
	}

	if m.notice != "" {
		body += "\n" + mutedStyle.Render(m.notice)
	}

	helpView := lipgloss.NewStyle().PaddingLeft(2).MarginTop(1).Render(m.help.View(m.keys))
	contentHeight := m.height - lipgloss.Height(helpView)
	if contentHeight < 0 {
		contentHeight = 0
	}
	m.viewport.Height = contentHeight
	m.viewport.SetContent(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), helpView)
}

func (m model) scheduleView() string {
	var b strings.Builder

	status := closedStyle.Render("Cafeteria is Closed")
	if m.status.IsOpen {
		status = openStyle.Render("Cafeteria is Open")
	}
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(m.date.Format("Monday, January 2")), status)
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(m.deps.Evaluator.MealHours(m.meal, m.date)))
	fmt.Fprintf(&b, "%s\n", m.mealTabs())

	if m.loading {
		b.WriteString("\n" + m.loadingSpinner.View() + " Loading menu")
		return b.String()
	}
	if m.err != nil {
		b.WriteString("\n" + closedStyle.Render(m.err.Error()))
		return b.String()
	}

	board := m.menu.Board()
	recommended := board.Recommended()
	row := 0

	if totals, ok := board.Totals(); ok {
		b.WriteString(sectionStyle.Render("Recommended for you") + "\n")
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("Meal totals: P %.0fg  C %.0fg  F %.0fg  %.0f kcal",
			totals.Protein, totals.Carbs, totals.Fat, totals.Calories)))
		for _, it := range recommended {
			b.WriteString(m.itemLine(row, it) + "\n")
			row++
		}
	}

	b.WriteString(sectionStyle.Render("Menu") + "\n")
	regular := board.Regular()
	if len(regular) == 0 && len(recommended) == 0 {
		b.WriteString(mutedStyle.Render("Nothing on the menu.") + "\n")
	}
	for _, it := range regular {
		b.WriteString(m.itemLine(row, it) + "\n")
		row++
	}

	if m.advice != "" {
		b.WriteString(sectionStyle.Render("Advice") + "\n")
		b.WriteString(renderMarkdown(m.advice, m.width))
	}
	return b.String()
}

func (m model) mealTabs() string {
	var tabs []string
	for _, meal := range m.deps.Evaluator.MealOptions(m.date) {
		if meal == m.meal {
			tabs = append(tabs, selectedStyle.Render("["+string(meal)+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+string(meal)+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m model) itemLine(row int, it models.MenuItem) string {
	cursor := "  "
	name := it.Name
	if row == m.cursor {
		cursor = "> "
		name = selectedStyle.Render(name)
	}

	mine := stars(m.ratings.Rating(it.ID))
	if m.ratings.Busy(it.ID) {
		mine = m.loadingSpinner.View()
	} else if _, staged := m.ratings.Pending(it.ID); staged {
		mine += mutedStyle.Render(" (enter to submit)")
	}

	tags := ""
	if t := it.Tags(); len(t) > 0 {
		tags = mutedStyle.Render(" " + strings.Join(t, ", "))
	}

	return fmt.Sprintf("%s%s%s\n    P %.0fg  C %.0fg  F %.0fg  %.0f kcal   overall %s   yours %s",
		cursor, name, tags, it.Protein, it.Carbs, it.Fats, it.Calories,
		stars(int(it.OverallStars+0.5)), mine)
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return starStyle.Render(strings.Repeat("★", n)) + mutedStyle.Render(strings.Repeat("☆", 5-n))
}

func (m model) profileView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n")

	if !m.prefs.Loaded() {
		b.WriteString(m.loadingSpinner.View() + " Loading preferences")
		return b.String()
	}

	busy := m.prefs.BusyKey()
	auth := m.prefs.Authoritative()
	pending := m.prefs.Pending()

	b.WriteString(sectionStyle.Render("Dietary restrictions") + "\n")
	for i, name := range models.AllRestrictions {
		on, _ := auth.Restriction(name)
		box := "[ ]"
		if on {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, strings.TrimPrefix(name, "Is"))
		if busy == name {
			line += " " + m.loadingSpinner.View()
		}
		b.WriteString(m.profileLine(i, line) + "\n")
	}

	b.WriteString(sectionStyle.Render("Macro targets") + "\n")
	for i := len(models.AllRestrictions); i < profileRows; i++ {
		meal, macro, _ := macroRow(i)
		want, _ := pending.Macro(meal, macro)
		have, _ := auth.Macro(meal, macro)

		value := fmt.Sprintf("%g", want)
		if m.editing && i == m.prefCursor {
			value = m.input.View()
		} else if want != have {
			value += mutedStyle.Render(fmt.Sprintf(" (was %g)", have))
		}
		b.WriteString(m.profileLine(i, fmt.Sprintf("%-10s %-14s %s", meal, macro, value)) + "\n")
	}

	if n := len(m.prefs.Diff()); n > 0 {
		fmt.Fprintf(&b, "\n%s", mutedStyle.Render(fmt.Sprintf("%d unsaved change(s), press s to save", n)))
	}
	if busy == preferences.BusySaving {
		b.WriteString("\n" + m.loadingSpinner.View() + " Saving...")
	}
	return b.String()
}

func (m model) profileLine(i int, s string) string {
	if i == m.prefCursor {
		return "> " + selectedStyle.Render(s)
	}
	return "  " + s
}

func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	wrapped := wordwrap.String(md, width-4)
	indented := indent.String(wrapped, 2)

	out, err := glamour.Render(indented, "dark")
	if err != nil {
		return indented
	}
	return out
}
