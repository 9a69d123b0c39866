package config

import (
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "cq1...x9z"
}

// CheckAPIKeys returns the status of all credentials.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Finnhub API Key", cfg.Finnhub.APIKey, EnvPrefix+"_FINNHUB_API_KEY", "FINNHUB_API_KEY"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = MaskKey(value)
	return status
}

// MaskKey masks an API key for display, showing only first 3 and last 3 chars.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

// Redacted returns a copy of cfg that is safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.Finnhub.APIKey = MaskKey(c.Finnhub.APIKey)
	if u, err := url.Parse(c.Cache.RedisURL); err == nil && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
			out.Cache.RedisURL = u.String()
		}
	}
	return out
}

// MarshalRedactedYAML renders the redacted configuration as YAML.
func (c *Config) MarshalRedactedYAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
