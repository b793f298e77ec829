package platform

import (
	"log"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

// AutostartApp describes the login item registered for the application
func AutostartApp() (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	return &autostart.App{
		Name:        "calendar-overlay",
		DisplayName: "Calendar Overlay",
		Exec:        []string{execPath},
	}, nil
}

// SetupAutostart makes the login item match enable
func SetupAutostart(enable bool) error {
	app, err := AutostartApp()
	if err != nil {
		return err
	}
	return syncAutostart(app, enable)
}

type loginItem interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

func syncAutostart(item loginItem, enable bool) error {
	switch {
	case enable && !item.IsEnabled():
		if err := item.Enable(); err != nil {
			log.Printf("Failed to enable autostart: %v", err)
			return err
		}
		log.Println("Autostart enabled")
	case !enable && item.IsEnabled():
		if err := item.Disable(); err != nil {
			log.Printf("Failed to disable autostart: %v", err)
			return err
		}
		log.Println("Autostart disabled")
	}
	return nil
}
