package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// If the file does not exist, it silently returns nil (not an error).
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}

// MustLoadDotEnv loads environment variables from a .env file.
// Unlike LoadDotEnv, it returns an error if the file does not exist.
func MustLoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path)
}

// LoadConfig builds the application configuration with the precedence
// defaults < YAML config file < environment. The .env file, if present, is
// loaded into the environment first; CONFIG_FILE may point at the YAML file.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	base := NewAppConfig()
	if envCfg.ConfigFile != "" {
		fileCfg, err := LoadFile(envCfg.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		base = fileCfg.ToAppConfig(base)
	}

	return envCfg.ToAppConfig(base), nil
}
