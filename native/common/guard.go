package common

import "errors"

// ErrModulePaused is returned when an operator has paused a settlement module.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named module is currently paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects work for paused modules. A nil view never pauses anything.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// PauseSet is a static PauseView built from configuration.
type PauseSet map[string]bool

// NewPauseSet marks every listed module as paused.
func NewPauseSet(modules []string) PauseSet {
	set := make(PauseSet, len(modules))
	for _, m := range modules {
		if m != "" {
			set[m] = true
		}
	}
	return set
}

func (s PauseSet) IsPaused(module string) bool {
	return s[module]
}
