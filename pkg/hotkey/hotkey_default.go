//go:build !darwin && !windows

package hotkey

import "golang.design/x/hotkey"

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.Mod1

	keyC = hotkey.KeyC
	keyR = hotkey.KeyR
	keyQ = hotkey.KeyQ
)
