package pathing

import (
	"os"
	"path/filepath"
)

func GetConfigDir() string {
	return "/etc/alc_charger_logger"
}

func GetDataDir() string {
	return "/var/lib/alc_charger_logger"
}

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "charger_logger.toml")
}

func GetHistoryDbPath() string {
	// Join path
	return filepath.Join(GetDataDir(), "charger-history.db")
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
