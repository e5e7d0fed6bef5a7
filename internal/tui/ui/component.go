package ui

// MenuHint describes a keyboard shortcut for display in the menu.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // page shortcuts 1-4, drawn in a different color
}

// Component is the lifecycle interface every page implements.
type Component interface {
	Name() string
	Hints() []MenuHint
}
