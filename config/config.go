package config

import (
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"safetx/logx"
)

// DefaultServiceConfig returns the configuration used when no file is given.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		ListenAddr: DefaultListenAddr,
		Database: DatabaseConfig{
			Backend: DefaultDBBackend,
			Path:    DefaultDBPath,
		},
	}
}

// LoadServiceConfig reads and parses the service YAML config file.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		logx.Error("CONFIG", "failed to open config file: ", err)
		return nil, err
	}
	defer file.Close()

	cfgFile := ConfigFile{Config: *DefaultServiceConfig()}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "failed to decode YAML: ", err)
		return nil, err
	}

	logx.Info("CONFIG", "loaded config: listen=", cfgFile.Config.ListenAddr,
		" backend=", cfgFile.Config.Database.Backend)
	return &cfgFile.Config, nil
}

// LoadRateLimitConfig reads submission rate limiter tuning from an .ini file
func LoadRateLimitConfig(path string) (*RateLimitConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	section := cfg.Section("ratelimit")
	rlCfg := &RateLimitConfig{}
	if err := section.MapTo(rlCfg); err != nil {
		return nil, err
	}
	return rlCfg, nil
}
