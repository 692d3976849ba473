// Package hotkey registers the global keyboard shortcuts for capture and
// retake so the app is usable while another window has focus.
package hotkey

import (
	"time"

	"golang.design/x/hotkey"

	"github.com/dixieflatline76/Passfoto/pkg/photoid"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// StartListeners initializes and starts the global hotkey listeners.
// It registers shortcuts for Capture, Retake and cycling the copy quantity.
func StartListeners() {
	// Ctrl + Alt + C (Capture)
	hkCapture := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keyC)

	// Ctrl + Alt + R (Retake)
	hkRetake := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keyR)

	// Ctrl + Alt + Q (Cycle copy quantity)
	hkQuantity := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keyQ)

	registerAndListen := func(hk *hotkey.Hotkey, name string, action func()) {
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register hotkey %s: %v", name, err)
			return
		}
		log.Printf("Registered hotkey: %s", name)

		go func() {
			for range hk.Keydown() {
				log.Debugf("Hotkey pressed: %s", name)
				action()
				time.Sleep(200 * time.Millisecond)
			}
		}()
	}

	registerAndListen(hkCapture, "Capture Photo", func() {
		photoid.GetInstance().CapturePhoto()
	})

	registerAndListen(hkRetake, "Retake Photo", func() {
		photoid.GetInstance().RetakePhoto()
	})

	registerAndListen(hkQuantity, "Cycle Copy Quantity", func() {
		photoid.GetInstance().CycleQuantity()
	})
}
