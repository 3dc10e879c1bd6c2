//go:build darwin

package scpi

// USB-CDC instruments enumerate as /dev/cu.usbmodem* on macOS.
const defaultPortPathPrefix = "/dev/cu.usbmodem"
