package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Meal    key.Binding
	Rate    key.Binding
	Commit  key.Binding
	Profile key.Binding
	Advise  key.Binding
	Refresh key.Binding
	Toggle  key.Binding
	Save    key.Binding
	Back    key.Binding
	Quit    key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevDay: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous day")),
	NextDay: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
	Meal:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "meal type")),
	Rate:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "rate")),
	Commit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit / edit")),
	Profile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
	Advise:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "advice")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save macros")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
}

// ShortHelp returns keybindings to be shown in the mini help view. It's part
// of the key.Map interface.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rate, k.Commit, k.Profile, k.Quit, k.Help}
}

// FullHelp returns keybindings for the expanded help view. It's part of the
// key.Map interface.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Meal},
		{k.Rate, k.Commit, k.Advise, k.Refresh},
		{k.Profile, k.Toggle, k.Save, k.Back},
		{k.Quit, k.Help},
	}
}
