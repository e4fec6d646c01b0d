//go:build linux

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
		mods = append(mods, hotkey.Mod1)
	}
	if acc.Meta {
		mods = append(mods, hotkey.Mod4)
	}
	return mods, nil
}
