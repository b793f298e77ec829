//go:build darwin

package platform

import (
	"log"
	"sync"

	"golang.design/x/hotkey"
)

// BlockQuitShortcut swallows Cmd+Q while the overlay is up. The returned
// function releases the shortcut again and is safe to call more than once.
func BlockQuitShortcut() (release func()) {
	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCmd}, hotkey.KeyQ)
	if err := hk.Register(); err != nil {
		log.Printf("Failed to register Cmd+Q hotkey prevention: %v", err)
		return func() {}
	}

	go func() {
		// Consuming the events keeps the default quit behaviour from running
		for range hk.Keydown() {
			log.Println("Cmd+Q blocked - dismiss or snooze the overlay instead")
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := hk.Unregister(); err != nil {
				log.Printf("Failed to unregister Cmd+Q hotkey: %v", err)
			}
		})
	}
}
