package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aguxez/dine/ratings"
)

func (m model) loadMenu() tea.Cmd {
	ctx, svc, date, meal := m.ctx, m.menu, m.date, m.meal
	return func() tea.Msg {
		mn, err := svc.Fetch(ctx, date, meal)
		return menuLoadedMsg{date: date, meal: meal, menu: mn, err: err}
	}
}

func (m *model) reload() tea.Cmd {
	m.loading = true
	m.advice = ""
	return tea.Batch(m.loadingSpinner.Tick, m.loadMenu())
}

func (m model) hydrate(ctrl *ratings.Controller) tea.Cmd {
	ctx, items := m.ctx, m.menu.Board().Items()
	return func() tea.Msg {
		ctrl.Hydrate(ctx, items)
		return ratingsHydratedMsg{ctrl: ctrl}
	}
}

// commitSelected commits the staged rating of the selected row, if any.
func (m model) commitSelected() tea.Cmd {
	item, ok := m.selected()
	if !ok {
		return nil
	}
	if _, staged := m.ratings.Pending(item.ID); !staged {
		return nil
	}

	ctx, ctrl := m.ctx, m.ratings
	return func() tea.Msg {
		_, err := ctrl.Commit(ctx, item.ID)
		return ratingCommittedMsg{itemID: item.ID, err: err}
	}
}

func (m model) loadPrefs() tea.Cmd {
	ctx, prefs := m.ctx, m.prefs
	return func() tea.Msg {
		return prefsLoadedMsg{err: prefs.Load(ctx)}
	}
}

func (m model) save() tea.Cmd {
	ctx, prefs := m.ctx, m.prefs
	return func() tea.Msg {
		n, err := prefs.SaveAllMacros(ctx)
		return prefsSavedMsg{saved: n, err: err}
	}
}

func (m model) toggle(name string, value bool) tea.Cmd {
	ctx, prefs := m.ctx, m.prefs
	return func() tea.Msg {
		return prefUpdatedMsg{err: prefs.ToggleDietaryRestriction(ctx, name, value)}
	}
}

func (m model) advise() tea.Cmd {
	ctx, advisor, meal := m.ctx, m.deps.Advisor, m.meal
	recs := m.menu.Board().Recommendations()
	targets, err := m.prefs.Authoritative().Targets(meal)
	return func() tea.Msg {
		if err != nil {
			return adviceMsg{err: err}
		}
		text, err := advisor.Advise(ctx, meal, recs, targets)
		return adviceMsg{text: text, err: err}
	}
}
