package shortcuts

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
)

type fakeRegistrar struct {
	failOn       map[string]bool
	registered   []Accelerator
	unregistered int
}

func (r *fakeRegistrar) Register(acc Accelerator, fn func()) (func(), error) {
	if r.failOn[acc.Key] {
		return nil, errors.New("key grabbed by another application")
	}
	r.registered = append(r.registered, acc)
	return func() { r.unregistered++ }, nil
}

func TestBindIsolatesFailures(t *testing.T) {
	reg := &fakeRegistrar{failOn: map[string]bool{"space": true}}
	c := NewController(reg, zerolog.Nop())

	bindings := []models.ShortcutBinding{
		{Accelerator: "Ctrl+Shift+Space", Action: "toggle-overlay"},
		{Accelerator: "Ctrl+Shift+D", Action: "show-dashboard"},
	}
	actions := map[string]func(){
		"toggle-overlay": func() {},
		"show-dashboard": func() {},
	}

	failed := c.Bind(bindings, actions)

	if len(failed) != 1 || failed[0] != "Ctrl+Shift+Space" {
		t.Errorf("failed = %v, want only the grabbed chord", failed)
	}
	if len(reg.registered) != 1 || reg.registered[0].Key != "d" {
		t.Errorf("registered = %v, want the dashboard chord to survive", reg.registered)
	}
}

func TestBindSkipsUnknownActionsAndBadChords(t *testing.T) {
	reg := &fakeRegistrar{}
	c := NewController(reg, zerolog.Nop())

	bindings := []models.ShortcutBinding{
		{Accelerator: "Ctrl+Shift", Action: "toggle-overlay"}, // no key
		{Accelerator: "Ctrl+Shift+X", Action: "no-such-action"},
		{Accelerator: "Ctrl+Shift+D", Action: "show-dashboard"},
	}
	actions := map[string]func(){
		"toggle-overlay": func() {},
		"show-dashboard": func() {},
	}

	failed := c.Bind(bindings, actions)

	if len(failed) != 2 {
		t.Errorf("failed = %v, want two rejects", failed)
	}
	if len(reg.registered) != 1 {
		t.Errorf("registered %d chords, want 1", len(reg.registered))
	}
}

func TestUnregisterAllReleasesEverything(t *testing.T) {
	reg := &fakeRegistrar{}
	c := NewController(reg, zerolog.Nop())

	bindings := []models.ShortcutBinding{
		{Accelerator: "Ctrl+Shift+Space", Action: "toggle-overlay"},
		{Accelerator: "Ctrl+Shift+D", Action: "show-dashboard"},
	}
	actions := map[string]func(){
		"toggle-overlay": func() {},
		"show-dashboard": func() {},
	}
	c.Bind(bindings, actions)

	c.UnregisterAll()
	if reg.unregistered != 2 {
		t.Errorf("unregistered = %d, want 2", reg.unregistered)
	}

	// Second call is a no-op.
	c.UnregisterAll()
	if reg.unregistered != 2 {
		t.Errorf("unregistered after repeat = %d, want 2", reg.unregistered)
	}
}
