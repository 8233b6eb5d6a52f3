package store

import "runtime"

func lockingSupported() bool {
	switch runtime.GOOS {
	case "windows", "plan9", "js", "wasip1":
		return false
	default:
		return true
	}
}
