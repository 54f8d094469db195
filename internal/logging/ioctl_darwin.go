//go:build darwin

package logging

const ioctlReadTermios = 0x40487413 // TIOCGETA
