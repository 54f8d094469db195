//go:build linux

package logging

const ioctlReadTermios = 0x5401 // TCGETS
