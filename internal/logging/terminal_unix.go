//go:build !windows

package logging

import (
	"syscall"
	"unsafe"
)

// isTerminal checks whether fd refers to a terminal on Unix-like systems.
func isTerminal(fd uintptr) bool {
	var termios syscall.Termios
	_, _, err := syscall.Syscall6(
		syscall.SYS_IOCTL,
		fd,
		ioctlReadTermios,
		uintptr(unsafe.Pointer(&termios)),
		0, 0, 0,
	)
	return err == 0
}
