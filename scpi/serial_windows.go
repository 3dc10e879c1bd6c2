//go:build windows

package scpi

// Serial ports enumerate as COM* on Windows.
const defaultPortPathPrefix = "COM"
