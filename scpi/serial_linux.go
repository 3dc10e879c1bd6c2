//go:build linux

package scpi

// USB-CDC instruments enumerate as /dev/ttyACM* on Linux.
const defaultPortPathPrefix = "/dev/ttyACM"
