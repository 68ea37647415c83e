// Package input maps keyboard state onto named game actions.
package input

import (
	"fmt"
	"math"
	"sort"

	"chosenoffset.com/mspj/internal/config"
	"chosenoffset.com/mspj/internal/render"
)

// Action is a named game action such as "move_up".
type Action string

// Actions the engine reads.
const (
	MoveUp    Action = config.ActionMoveUp
	MoveDown  Action = config.ActionMoveDown
	MoveLeft  Action = config.ActionMoveLeft
	MoveRight Action = config.ActionMoveRight
	Quit      Action = config.ActionQuit
)

// Manager answers action queries against a backend input manager.
type Manager struct {
	source   render.InputManager
	bindings map[Action][]render.Key
}

// NewManager resolves the configured key names. Unknown key names are an
// error.
func NewManager(source render.InputManager, cfg config.InputConfig) (*Manager, error) {
	m := &Manager{
		source:   source,
		bindings: make(map[Action][]render.Key, len(cfg.Bindings)),
	}
	for action, names := range cfg.Bindings {
		for _, name := range names {
			key, ok := render.ParseKey(name)
			if !ok {
				return nil, fmt.Errorf("unknown key %q bound to action %q", name, action)
			}
			m.bindings[Action(action)] = append(m.bindings[Action(action)], key)
		}
	}
	return m, nil
}

// Bind adds a key to an action.
func (m *Manager) Bind(action Action, key render.Key) {
	for _, k := range m.bindings[action] {
		if k == key {
			return
		}
	}
	m.bindings[action] = append(m.bindings[action], key)
}

// Keys returns the keys bound to an action, in binding order.
func (m *Manager) Keys(action Action) []render.Key {
	keys := m.bindings[action]
	out := make([]render.Key, len(keys))
	copy(out, keys)
	return out
}

// Actions returns every bound action in name order.
func (m *Manager) Actions() []Action {
	out := make([]Action, 0, len(m.bindings))
	for a := range m.bindings {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Pressed reports whether any key bound to action is held.
func (m *Manager) Pressed(action Action) bool {
	for _, k := range m.bindings[action] {
		if m.source.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// JustPressed reports whether any key bound to action went down this tick.
func (m *Manager) JustPressed(action Action) bool {
	for _, k := range m.bindings[action] {
		if m.source.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// Axis returns the movement direction from the move actions, normalized so
// diagonal movement is not faster. Opposing keys cancel.
func (m *Manager) Axis() (dx, dy float64) {
	if m.Pressed(MoveLeft) {
		dx--
	}
	if m.Pressed(MoveRight) {
		dx++
	}
	if m.Pressed(MoveUp) {
		dy--
	}
	if m.Pressed(MoveDown) {
		dy++
	}
	if dx != 0 && dy != 0 {
		dx /= math.Sqrt2
		dy /= math.Sqrt2
	}
	return dx, dy
}
