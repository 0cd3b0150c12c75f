package core

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Location resolves a command name to a path in one candidate place.
type Location func(name string) (string, bool)

// Resolve returns the first match for name from locations, in order.
func Resolve(name string, locations ...Location) (string, bool) {
	for _, loc := range locations {
		if path, ok := loc(name); ok {
			return path, true
		}
	}
	return "", false
}

// InDir matches an executable file named name directly inside dir.
func InDir(dir string) Location {
	return func(name string) (string, bool) {
		path := filepath.Join(dir, executableName(name))
		if isExecutableFile(path) {
			return path, true
		}
		return "", false
	}
}

// OnPath matches name on the system search path.
func OnPath() Location {
	return func(name string) (string, bool) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", false
		}
		return path, true
	}
}

// executableName appends the platform's executable suffix.
func executableName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
