//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

void setAccessoryPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
}

int isAppActive(void) {
    return [NSApp isActive] ? 1 : 0;
}

void activateApp(void) {
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"
import "log"

// SetActivationPolicy hides the dock icon so the app lives in the menu bar only
func SetActivationPolicy() {
	log.Println("[PLATFORM] Switching to accessory activation policy")
	C.setAccessoryPolicy()
}

// IsAppActive returns true if the application is currently active/focused
func IsAppActive() bool {
	return C.isAppActive() == 1
}

// ActivateApp brings the application to the front
func ActivateApp() {
	C.activateApp()
}
