//go:build windows

package shortcuts

import "golang.design/x/hotkey"

func platformModifiers(acc Accelerator) ([]hotkey.Modifier, error) {
	var mods []hotkey.Modifier
	if acc.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if acc.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	if acc.Alt {
		mods = append(mods, hotkey.ModAlt)
	}
	if acc.Meta {
		mods = append(mods, hotkey.ModWin)
	}
	return mods, nil
}
