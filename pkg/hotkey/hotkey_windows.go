//go:build windows

package hotkey

import "golang.design/x/hotkey"

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.ModAlt

	keyC = hotkey.KeyC
	keyR = hotkey.KeyR
	keyQ = hotkey.KeyQ
)
