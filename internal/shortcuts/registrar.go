package shortcuts

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.design/x/hotkey"
)

// Registrar turns an accelerator into a live OS-level hotkey. Implemented
// by the hotkey-backed registrar in production and by fakes in tests.
type Registrar interface {
	// Register binds acc to fn and returns an unregister func.
	Register(acc Accelerator, fn func()) (func(), error)
}

// keyNames maps normalized key tokens to hotkey key codes.
var keyNames = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"return": hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"esc":    hotkey.KeyEscape,
	"tab":    hotkey.KeyTab,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"a":      hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// systemRegistrar registers hotkeys with the OS.
type systemRegistrar struct {
	logger zerolog.Logger
}

// NewSystemRegistrar returns the production registrar.
func NewSystemRegistrar(logger zerolog.Logger) Registrar {
	return &systemRegistrar{logger: logger}
}

func (r *systemRegistrar) Register(acc Accelerator, fn func()) (func(), error) {
	mods, err := platformModifiers(acc)
	if err != nil {
		return nil, err
	}
	key, ok := keyNames[acc.Key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q", acc.Key)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", acc, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hk.Keydown():
				fn()
			case <-done:
				return
			}
		}
	}()

	unregister := func() {
		close(done)
		if err := hk.Unregister(); err != nil {
			r.logger.Warn().Err(err).Str("accelerator", acc.String()).Msg("failed to unregister shortcut")
		}
	}
	return unregister, nil
}
