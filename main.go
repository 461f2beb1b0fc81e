// Package main provides the entry point for the PlateScan application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"platescan/internal/app"
	"platescan/internal/version"
	"platescan/ui/mainwindow"
	"platescan/ui/prefs"
)

const appTitle = "PlateScan"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("io.platescan.app")

	session := app.NewSession()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, session, appPrefs)
	win.SetTitle(appTitle)

	// Handle command line arguments
	if len(os.Args) > 1 {
		win.OpenHoleTable(os.Args[1])
	}

	setupHotReload(win, appPrefs)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow, appPrefs *prefs.Prefs) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s", reloader.ExecPath())

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					return
				}
				if err := appPrefs.SaveIfChanged(); err != nil {
					log.Printf("Hot reload: save preferences: %v", err)
				}
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win)
	})

	reloader.Start()
}
