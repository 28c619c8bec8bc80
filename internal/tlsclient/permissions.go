package tlsclient

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// CheckKeyStoreFile inspects the key store at path and returns a warning
// when other users on the host could read it. Missing or unreadable files
// return "" here; loading the store reports those.
func CheckKeyStoreFile(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return ""
	}
	if !info.Mode().IsRegular() {
		return fmt.Sprintf("key store %s is not a regular file", path)
	}
	// Windows reports synthetic permission bits.
	if runtime.GOOS == "windows" {
		return ""
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Sprintf("key store %s is accessible by other users (mode %#o); consider chmod 600", path, perm)
	}
	return ""
}
