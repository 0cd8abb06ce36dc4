package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"odyssey/internal/core/flow"
	"odyssey/internal/core/idlewatch"
	"odyssey/internal/core/model"
	"odyssey/internal/core/player"
	"odyssey/internal/platform"
	"odyssey/internal/storage"
	"odyssey/internal/ui/preferences"
	"odyssey/internal/ui/stage"
	"odyssey/internal/ui/tray"
	"odyssey/resources"
)

const appName = "Odyssey"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if err := platform.ActivateRunning(appName); err != nil {
				log.Printf("activate running instance: %v", err)
			}
		}
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("com.odyssey.player")
	activeIcon := resources.MustIcon("odyssey.svg")
	pausedIcon := resources.MustIcon("odyssey_paused.svg")
	fyneApp.SetIcon(activeIcon)

	composer := stage.NewComposer()
	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)

	handleEvent := func(event flow.Event) {
		fyne.Do(func() {
			if trayManager == nil {
				return
			}
			switch event.Type {
			case flow.EventSceneChange:
				trayManager.SetStatus(event.Scene.String())
			case flow.EventPause:
				trayManager.SetPaused(true)
				desktopApp.SetSystemTrayIcon(pausedIcon)
			case flow.EventResume:
				trayManager.SetPaused(false)
				desktopApp.SetSystemTrayIcon(activeIcon)
			case flow.EventStopped:
				trayManager.SetStatus("stopped")
			}
		})
	}

	flowPlayer := player.New(composer, handleEvent)
	flowPlayer.Load(settings.Timings(), loadScripts(settings))

	watcher := idlewatch.New(settings.IdleConfig(), platform.NewIdleChecker(), flowPlayer)
	go watcher.Run(ctx)

	var quitOnce sync.Once
	quit := func() {
		quitOnce.Do(func() {
			cancel()
			flowPlayer.Close()
			fyneApp.Quit()
		})
	}

	stageWindow := stage.New(fyneApp, stage.Config{Fullscreen: settings.Fullscreen, Title: appName}, composer, flowPlayer.Snapshot, stage.Callbacks{
		OnTogglePause: flowPlayer.TogglePause,
		OnSelect: func(id model.ChoiceID) {
			if !flowPlayer.Select(id) {
				log.Printf("choice %q ignored", id)
			}
		},
		OnClose: quit,
	})

	guard.Serve(func() {
		fyne.Do(func() {
			stageWindow.Show(ctx)
		})
	})

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := storage.SaveSettings(appName, settings); err != nil {
			log.Printf("save settings: %v", err)
		}
		watcher.SetConfig(settings.IdleConfig())
		stageWindow.UpdateConfig(stage.Config{Fullscreen: settings.Fullscreen, Title: appName})
		flowPlayer.Load(settings.Timings(), loadScripts(settings))
		flowPlayer.Start(ctx)
	})

	if hasTray {
		var pauseTimer *time.Timer
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShowStage: func() {
				stageWindow.Show(ctx)
			},
			OnPreferences: func() {
				prefsWindow.SetIdleStatus(watcher.Enabled(), watcher.Err())
				prefsWindow.Show()
			},
			OnTogglePause: flowPlayer.TogglePause,
			OnPauseFor: func(duration time.Duration) {
				if pauseTimer != nil {
					pauseTimer.Stop()
				}
				flowPlayer.Pause()
				pauseTimer = time.AfterFunc(duration, flowPlayer.Resume)
			},
			OnRestart: func() {
				flowPlayer.Restart(ctx)
			},
			OnQuit: quit,
		})
		desktopApp.SetSystemTrayIcon(activeIcon)
	} else {
		log.Printf("system tray unsupported on this platform")
	}

	stageWindow.Show(ctx)
	flowPlayer.Start(ctx)
	fyneApp.Run()
	quit()
}

func loadScripts(settings preferences.Settings) model.ScriptProvider {
	scripts, err := storage.LoadScripts(settings.ScriptPath)
	if err == nil {
		return scripts
	}
	log.Printf("load script %q: %v", settings.ScriptPath, err)

	scripts, err = storage.LoadDefaultScripts()
	if err != nil {
		log.Printf("load bundled script: %v", err)
		return model.StaticScripts{}
	}
	return scripts
}
