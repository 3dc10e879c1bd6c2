//go:build !linux && !darwin && !windows

package scpi

const defaultPortPathPrefix = "/dev/ttyUSB"
