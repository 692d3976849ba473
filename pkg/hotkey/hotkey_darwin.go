//go:build darwin

package hotkey

import "golang.design/x/hotkey"

const (
	// Cmd+Option reads more natively on macOS than Ctrl+Alt.
	modCtrl = hotkey.ModCmd
	modAlt  = hotkey.ModOption

	keyC = hotkey.KeyC
	keyR = hotkey.KeyR
	keyQ = hotkey.KeyQ
)
