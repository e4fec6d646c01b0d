// Package shortcuts registers global keyboard shortcuts and routes them to
// named host actions.
package shortcuts

import (
	"fmt"
	"strings"
)

// Accelerator is a parsed shortcut chord: zero or more modifiers plus one key.
type Accelerator struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
	Key   string
}

// String renders the accelerator in canonical form.
func (a Accelerator) String() string {
	var parts []string
	if a.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if a.Shift {
		parts = append(parts, "Shift")
	}
	if a.Alt {
		parts = append(parts, "Alt")
	}
	if a.Meta {
		parts = append(parts, "Meta")
	}
	key := a.Key
	if key != "" {
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// ParseAccelerator parses strings like "Ctrl+Shift+Space". Token names are
// case-insensitive; the final token must be a non-modifier key.
func ParseAccelerator(s string) (Accelerator, error) {
	var acc Accelerator

	tokens := strings.Split(s, "+")
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			return acc, fmt.Errorf("accelerator %q has an empty token", s)
		}
		last := i == len(tokens)-1

		switch strings.ToLower(token) {
		case "ctrl", "control":
			if acc.Ctrl {
				return acc, fmt.Errorf("accelerator %q repeats Ctrl", s)
			}
			acc.Ctrl = true
		case "shift":
			if acc.Shift {
				return acc, fmt.Errorf("accelerator %q repeats Shift", s)
			}
			acc.Shift = true
		case "alt", "option":
			if acc.Alt {
				return acc, fmt.Errorf("accelerator %q repeats Alt", s)
			}
			acc.Alt = true
		case "meta", "cmd", "command", "super", "win":
			if acc.Meta {
				return acc, fmt.Errorf("accelerator %q repeats Meta", s)
			}
			acc.Meta = true
		default:
			if !last {
				return acc, fmt.Errorf("accelerator %q has key %q before the end", s, token)
			}
			acc.Key = strings.ToLower(token)
		}
	}

	if acc.Key == "" {
		return acc, fmt.Errorf("accelerator %q has no key", s)
	}
	return acc, nil
}
