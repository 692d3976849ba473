package main

import (
	"net/http"
	"time"

	"github.com/dixieflatline76/Passfoto/config"
	"github.com/dixieflatline76/Passfoto/pkg/hotkey"
	"github.com/dixieflatline76/Passfoto/pkg/photoid"
	"github.com/dixieflatline76/Passfoto/ui"
	"github.com/dixieflatline76/Passfoto/util"
	"github.com/dixieflatline76/Passfoto/util/log"
)

func main() {
	log.Printf("Starting %s %s from %s", config.AppName, config.AppVersion, config.GetWorkingDir())

	pa := ui.GetInstance()
	if pa == nil {
		log.Fatal("This platform is not supported")
	}

	pa.Register(photoid.GetInstance())

	hotkey.StartListeners()

	if config.NewAppConfig(pa.GetPreferences()).GetUpdateCheckEnabled() {
		go func() {
			httpClient := &http.Client{Timeout: 10 * time.Second}
			result, err := util.CheckForUpdates(httpClient)
			if err != nil {
				log.Printf("update check failed: %v", err)
				return
			}
			if result.UpdateAvailable {
				pa.NotifyUser("Update Available", "Version "+result.LatestVersion+" is ready to download.")
			}
		}()
	}

	pa.Start()
}
