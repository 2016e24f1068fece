package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "vetlink"

	// Version is reported by `vetlink version` and sent as part of the User-Agent
	Version = "0.3.0"

	// ConfigFileName is the ini file holding user settings inside the application directory
	ConfigFileName = "config.ini"

	// LogFileName receives logs while the TUI owns the terminal
	LogFileName = "vetlink.log"

	// DatabaseFileName is the default SQLite file used by `vetlink serve`
	DatabaseFileName = "vetlink.db"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the vetlink configuration directory path.
// Linux: ~/.config/vetlink (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\vetlink (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// EnsureApplicationDirectory returns the application directory, creating it when missing.
func EnsureApplicationDirectory() (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// FilePath joins name onto the application directory.
func FilePath(name string) (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, name), nil
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		// Windows: use AppData\Local (via UserCacheDir)
		baseDir, err = os.UserCacheDir()
	default:
		// Linux/others: use ~/.config (via UserConfigDir)
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)

		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
