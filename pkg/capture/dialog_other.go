//go:build !windows

package capture

import "errors"

// ErrNoNativeDialog is returned on platforms without a native file dialog;
// the UI falls back to the fyne dialog there.
var ErrNoNativeDialog = errors.New("no native file dialog on this platform")

// PickPhotoFile is unavailable off Windows.
func PickPhotoFile() (string, error) {
	return "", ErrNoNativeDialog
}
