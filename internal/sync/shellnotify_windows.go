//go:build windows

package sync

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	shcneUpdateDir   = 0x00001000
	shcnfPathW       = 0x0005
	shcnfFlushNoWait = 0x3000
)

var (
	shell32          = windows.NewLazySystemDLL("shell32.dll")
	procChangeNotify = shell32.NewProc("SHChangeNotify")
)

// notifyShellUpdate tells Explorer to refresh its view of dir.
func notifyShellUpdate(dir string) {
	ptr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return
	}
	procChangeNotify.Call(
		uintptr(shcneUpdateDir),
		uintptr(shcnfPathW|shcnfFlushNoWait),
		uintptr(unsafe.Pointer(ptr)),
		0,
	)
}
