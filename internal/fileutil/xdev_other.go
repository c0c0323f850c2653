//go:build !unix && !windows

package fileutil

func isCrossDevice(error) bool { return false }
