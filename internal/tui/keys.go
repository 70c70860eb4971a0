package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevPeriod key.Binding
	NextPeriod key.Binding
	PrevYear   key.Binding
	NextYear   key.Binding
	PrevDay    key.Binding
	NextDay    key.Binding
	PrevWeek   key.Binding
	NextWeek   key.Binding
	ToggleMode key.Binding
	Neighbours key.Binding
	Today      key.Binding
	InputYear  key.Binding
	InputMonth key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevPeriod: key.NewBinding(key.WithKeys("k", "["), key.WithHelp("k/[", "prev period")),
		NextPeriod: key.NewBinding(key.WithKeys("j", "]"), key.WithHelp("j/]", "next period")),
		PrevYear:   key.NewBinding(key.WithKeys("K", "{"), key.WithHelp("K/{", "prev year")),
		NextYear:   key.NewBinding(key.WithKeys("J", "}"), key.WithHelp("J/}", "next year")),
		PrevDay:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		NextDay:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		PrevWeek:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "week earlier")),
		NextWeek:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "week later")),
		ToggleMode: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "month/week")),
		Neighbours: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "prev/next too")),
		Today:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "today")),
		InputYear:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "go to year")),
		InputMonth: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "go to month")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevPeriod, k.NextPeriod, k.ToggleMode, k.Today, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevPeriod, k.NextPeriod, k.PrevYear, k.NextYear},
		{k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek},
		{k.ToggleMode, k.Neighbours, k.Today, k.InputYear, k.InputMonth},
		{k.Help, k.Quit},
	}
}
