package config

import (
	"fmt"
	"strconv"
	"time"
)

// Keys returns the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"theme",
		"locale",
		"storage_root",
		"log_file",
		"resume_command",
		"server.host",
		"server.port",
		"server.auth_token",
		"search.index_path",
		"search.watch",
		"search.debounce",
	}
}

// Get returns the value of a configuration key as a string.
func Get(c Config, key string) (string, error) {
	switch key {
	case "theme":
		return c.Theme, nil
	case "locale":
		return c.Locale, nil
	case "storage_root":
		return c.StorageRoot, nil
	case "log_file":
		return c.LogFile, nil
	case "resume_command":
		return c.ResumeCommand, nil
	case "server.host":
		return c.Server.Host, nil
	case "server.port":
		return strconv.Itoa(c.Server.Port), nil
	case "server.auth_token":
		return c.Server.AuthToken, nil
	case "search.index_path":
		return c.Search.IndexPath, nil
	case "search.watch":
		return strconv.FormatBool(c.Search.Watch), nil
	case "search.debounce":
		return c.Search.Debounce, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set assigns a configuration key from its string form, validating typed
// values before they land in the struct.
func Set(c *Config, key, value string) error {
	switch key {
	case "theme":
		c.Theme = value
	case "locale":
		c.Locale = value
	case "storage_root":
		c.StorageRoot = value
	case "log_file":
		c.LogFile = value
	case "resume_command":
		c.ResumeCommand = value
	case "server.host":
		c.Server.Host = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", value)
		}
		c.Server.Port = port
	case "server.auth_token":
		c.Server.AuthToken = value
	case "search.index_path":
		c.Search.IndexPath = value
	case "search.watch":
		watch, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		c.Search.Watch = watch
	case "search.debounce":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		c.Search.Debounce = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
