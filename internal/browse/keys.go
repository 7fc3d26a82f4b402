package browse

import "github.com/charmbracelet/bubbles/key"

// listKeys holds key bindings while paging through contacts.
type listKeys struct {
	Prev   key.Binding
	Next   key.Binding
	Filter key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

// ShortHelp returns the list bindings for the help bar.
func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Filter, k.Clear, k.Quit}
}

// FullHelp returns the list bindings grouped for expanded help.
func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.Filter, k.Clear, k.Quit},
	}
}

// filterKeys holds key bindings while typing a filter.
type filterKeys struct {
	Apply  key.Binding
	Cancel key.Binding
}

// ShortHelp returns the filter bindings for the help bar.
func (k filterKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Cancel}
}

// FullHelp returns the filter bindings grouped for expanded help.
func (k filterKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Apply, k.Cancel}}
}

// ListKeyMap returns the key bindings for list mode.
func ListKeyMap() listKeys {
	return listKeys{
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// FilterKeyMap returns the key bindings for filter mode.
func FilterKeyMap() filterKeys {
	return filterKeys{
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
