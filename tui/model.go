package tui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aguxez/dine/agent"
	"github.com/aguxez/dine/menu"
	"github.com/aguxez/dine/models"
	"github.com/aguxez/dine/preferences"
	"github.com/aguxez/dine/ratings"
	"github.com/aguxez/dine/schedule"
	"github.com/aguxez/dine/session"
)

// Gateway is every backend call the terminal UI makes.
type Gateway interface {
	menu.Gateway
	ratings.Gateway
	preferences.Gateway
}

type Deps struct {
	Gateway         Gateway
	Sessions        *session.Manager
	Session         session.Session
	Evaluator       *schedule.Evaluator
	Advisor         *agent.Advisor
	RefreshInterval time.Duration
	Now             func() time.Time
}

type view int

const (
	scheduleView view = iota
	profileView
	signedOutView
)

type model struct {
	ctx  context.Context
	deps Deps

	view    view
	width   int
	height  int
	loading bool
	err     error
	notice  string

	status models.CafeteriaStatus
	dates  schedule.DateRange
	date   time.Time
	meal   models.MealType

	menu    *menu.Service
	ratings *ratings.Controller
	cursor  int

	prefs      *preferences.Controller
	prefCursor int
	editing    bool
	input      textinput.Model

	advice string

	loadingSpinner spinner.Model
	viewport       viewport.Model
	keys           keyMap
	help           help.Model
}

type statusTickMsg time.Time
type menuLoadedMsg struct {
	date time.Time
	meal models.MealType
	menu menu.Menu
	err  error
}
type ratingsHydratedMsg struct{ ctrl *ratings.Controller }
type ratingCommittedMsg struct {
	itemID int
	err    error
}
type prefsLoadedMsg struct{ err error }
type prefsSavedMsg struct {
	saved int
	err   error
}
type prefUpdatedMsg struct{ err error }
type adviceMsg struct {
	text string
	err  error
}
type sessionChangedMsg struct{}

func newModel(ctx context.Context, deps Deps) model {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	in := textinput.New()
	in.Placeholder = "value"
	in.CharLimit = 8

	now := deps.Now()
	ev := deps.Evaluator

	return model{
		ctx:            ctx,
		deps:           deps,
		loading:        true,
		status:         ev.Status(now),
		dates:          ev.DateRange(now),
		date:           ev.Day(now),
		meal:           ev.DefaultMealType(now),
		menu:           menu.NewService(deps.Gateway, deps.Session.ID, &models.MenuBoard{}),
		ratings:        ratings.NewController(deps.Gateway, deps.Session.ID),
		prefs:          preferences.NewController(deps.Gateway, deps.Session.ID),
		input:          in,
		loadingSpinner: s,
		viewport:       viewport.New(0, 0),
		keys:           keys,
		help:           help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.loadingSpinner.Tick,
		m.tick(),
		m.loadMenu(),
		m.loadPrefs(),
	)
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.deps.RefreshInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case statusTickMsg:
		now := time.Time(msg)
		m.status = m.deps.Evaluator.Status(now)
		m.dates = m.deps.Evaluator.DateRange(now)
		return m, m.tick()

	case menuLoadedMsg:
		// Only the answer for the current selection may touch the board.
		if !msg.date.Equal(m.date) || msg.meal != m.meal {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.menu.Apply(msg.menu)
		// A fresh list gets a fresh controller; answers for the old list are dropped.
		m.ratings.Close()
		m.ratings = ratings.NewController(m.deps.Gateway, m.deps.Session.ID)
		m.cursor = 0
		return m, m.hydrate(m.ratings)

	case ratingsHydratedMsg:
		return m, nil

	case ratingCommittedMsg:
		if msg.err != nil {
			m.notice = "Rating not saved: " + msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, nil

	case prefsLoadedMsg:
		if msg.err != nil {
			m.notice = "Preferences unavailable: " + msg.err.Error()
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.notice = "Save stopped: " + msg.err.Error()
		} else {
			m.notice = "Saved " + strconv.Itoa(msg.saved) + " macro targets"
		}
		return m, nil

	case prefUpdatedMsg:
		if msg.err != nil {
			m.notice = "Update failed: " + msg.err.Error()
		}
		return m, nil

	case adviceMsg:
		m.loading = false
		if msg.err != nil {
			m.notice = "No advice: " + msg.err.Error()
			return m, nil
		}
		m.advice = msg.text
		return m, nil

	case sessionChangedMsg:
		if m.deps.Sessions == nil {
			return m, nil
		}
		if _, err := m.deps.Sessions.Current(); err != nil {
			m.view = signedOutView
			if errors.Is(err, session.ErrExpired) {
				m.notice = "Your session expired. Run `dine login` again."
			} else {
				m.notice = "You were signed out. Run `dine login` again."
			}
			m.ratings.Close()
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.loadingSpinner, cmd = m.loadingSpinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.editing {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) && !m.editing {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		switch m.view {
		case scheduleView:
			return m.updateSchedule(msg)
		case profileView:
			return m.updateProfile(msg)
		}
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// rows is the list on screen: recommended items first, then the rest.
func (m model) rows() []models.MenuItem {
	board := m.menu.Board()
	return append(board.Recommended(), board.Regular()...)
}

func (m model) selected() (models.MenuItem, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return models.MenuItem{}, false
	}
	return rows[m.cursor], true
}

func (m model) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		// Leaving a row commits its staged rating.
		cmd := m.commitSelected()
		rows := len(m.rows())
		if key.Matches(msg, m.keys.Up) && m.cursor > 0 {
			m.cursor--
		} else if key.Matches(msg, m.keys.Down) && m.cursor < rows-1 {
			m.cursor++
		}
		return m, cmd

	case key.Matches(msg, m.keys.Rate):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		stars, _ := strconv.Atoi(msg.String())
		if err := m.ratings.Stage(item.ID, stars); err != nil {
			m.notice = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		return m, m.commitSelected()

	case key.Matches(msg, m.keys.PrevDay), key.Matches(msg, m.keys.NextDay):
		next := m.dates.Next(m.date)
		if key.Matches(msg, m.keys.PrevDay) {
			next = m.dates.Previous(m.date)
		}
		if next.Equal(m.date) {
			return m, nil
		}
		commit := m.commitSelected()
		m.date = next
		if !m.deps.Evaluator.Offers(m.date, m.meal) {
			m.meal = m.deps.Evaluator.MealOptions(m.date)[0]
		}
		load := m.reload()
		return m, tea.Batch(commit, load)

	case key.Matches(msg, m.keys.Meal):
		options := m.deps.Evaluator.MealOptions(m.date)
		next := options[0]
		for i, o := range options {
			if o == m.meal {
				next = options[(i+1)%len(options)]
			}
		}
		if next == m.meal {
			return m, nil
		}
		commit := m.commitSelected()
		m.meal = next
		load := m.reload()
		return m, tea.Batch(commit, load)

	case key.Matches(msg, m.keys.Refresh):
		load := m.reload()
		return m, load

	case key.Matches(msg, m.keys.Advise):
		if m.deps.Advisor == nil {
			m.notice = "Advice needs OPENROUTER_API_KEY"
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadingSpinner.Tick, m.advise())

	case key.Matches(msg, m.keys.Profile):
		commit := m.commitSelected()
		m.view = profileView
		m.notice = ""
		return m, commit
	}
	return m, nil
}

func (m model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			m.editing = false
			m.input.Blur()
			meal, macro, _ := macroRow(m.prefCursor)
			v, err := strconv.ParseFloat(m.input.Value(), 64)
			if err != nil || v < 0 {
				m.notice = "Enter a non-negative number"
				return m, nil
			}
			if err := m.prefs.StageMacro(meal, macro, v); err != nil {
				m.notice = err.Error()
			}
			return m, nil
		case tea.KeyEsc:
			m.editing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if !m.prefs.Loaded() {
		if key.Matches(msg, m.keys.Back) {
			m.view = scheduleView
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.prefCursor > 0 {
			m.prefCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.prefCursor < profileRows-1 {
			m.prefCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		name, ok := restrictionRow(m.prefCursor)
		if !ok || m.prefs.BusyKey() != "" {
			return m, nil
		}
		current, _ := m.prefs.Authoritative().Restriction(name)
		return m, m.toggle(name, !current)
	case key.Matches(msg, m.keys.Commit):
		meal, macro, ok := macroRow(m.prefCursor)
		if !ok {
			return m, nil
		}
		v, _ := m.prefs.Pending().Macro(meal, macro)
		m.input.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
		m.input.Focus()
		m.editing = true
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Save):
		if m.prefs.BusyKey() != "" {
			return m, nil
		}
		m.notice = "Saving..."
		return m, m.save()
	case key.Matches(msg, m.keys.Back):
		m.view = scheduleView
		m.notice = ""
	}
	return m, nil
}

// Profile rows are the restrictions followed by every meal/macro target.
var profileRows = len(models.AllRestrictions) + len(models.AllMealTypes)*len(models.AllMacros)

func restrictionRow(i int) (string, bool) {
	if i < len(models.AllRestrictions) {
		return models.AllRestrictions[i], true
	}
	return "", false
}

func macroRow(i int) (models.MealType, models.Macro, bool) {
	i -= len(models.AllRestrictions)
	if i < 0 || i >= len(models.AllMealTypes)*len(models.AllMacros) {
		return "", "", false
	}
	n := len(models.AllMacros)
	return models.AllMealTypes[i/n], models.AllMacros[i%n], true
}
