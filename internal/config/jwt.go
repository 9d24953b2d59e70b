package config

import "fmt"

// JWTConfig holds configuration for API token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// JWT returns the token configuration, or false when no secret is set and authentication is off.
func (s ServerConfig) JWT() (*JWTConfig, bool) {
	if s.JWTSecret == "" {
		return nil, false
	}
	return &JWTConfig{Secret: s.JWTSecret, ExpirationHours: s.TokenExpirationHours}, true
}

// Normalize validates the token configuration.
func (c *JWTConfig) Normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("token expiration must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
