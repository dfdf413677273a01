// Package config loads service configuration from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const configDir = "configs"

// Load reads configs/<APP_ENV>/<serviceName>.yaml (or CONFIG_PATH) into out.
// Every key can be overridden by <SERVICENAME>_<SECTION>_<KEY> environment
// variables. defaults seeds every key so env-only deployments still bind.
// A missing config file is not an error.
func Load(serviceName string, defaults map[string]interface{}, out interface{}) error {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := readConfigFile(v, serviceName); err != nil {
		return err
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, serviceName string) error {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return nil
		}
		v.AddConfigPath(path)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	v.SetConfigName(serviceName)
	v.AddConfigPath(filepath.Join(configDir, env))
	v.AddConfigPath(filepath.Join(configDir, "example"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
