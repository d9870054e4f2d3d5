// Package config provides configuration for the Akismet client
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/akismet/akismetclient-go/protocol"
)

// Version is the version of this library, reported in the default user agent
const Version = "1.0.0"

// DefaultUserAgent returns "<runtime> | Akismet/<version>"
func DefaultUserAgent() string {
	return fmt.Sprintf("Go/%s | Akismet/%s", strings.TrimPrefix(runtime.Version(), "go"), Version)
}

// TLSSettings represents custom TLS settings for the Akismet client
type TLSSettings struct {
	// Path to the TLS certificate file
	CertPath string
	// Path to the TLS key file
	KeyPath string
	// Optional path to the TLS CA file
	CAPath *string
}

// ProxyConfig represents proxy configuration for the Akismet client
type ProxyConfig struct {
	// Proxy server URL
	ProxyURL string
	// Optional username for proxy authentication
	Username *string
	// Optional password for proxy authentication
	Password *string
}

// Config represents configuration for Akismet client
type Config struct {
	// Akismet API key
	APIKey string
	// Base URL of the Akismet REST API, version segment included
	BaseURL string
	// Send is_test=1 with every request
	IsTest bool
	// Value of the User-Agent header
	UserAgent string
	// Timeout duration for requests in seconds, zero for none
	Timeout float64
	// Custom TLS settings
	TLSSettings *TLSSettings
	// Proxy configuration
	ProxyConfig *ProxyConfig
}

// NewConfig creates a new Config with default values
func NewConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		BaseURL:   protocol.DefaultBaseURL,
		UserAgent: DefaultUserAgent(),
	}
}

// WithBaseURL sets the base URL, e.g. to target a test server
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.BaseURL = baseURL
	return c
}

// WithTest enables or disables test mode
func (c *Config) WithTest(enabled bool) *Config {
	c.IsTest = enabled
	return c
}

// WithUserAgent sets the user agent
func (c *Config) WithUserAgent(userAgent string) *Config {
	c.UserAgent = userAgent
	return c
}

// WithTimeout sets the timeout for requests
func (c *Config) WithTimeout(timeout float64) *Config {
	c.Timeout = timeout
	return c
}

// WithTLSSettings sets custom TLS settings
func (c *Config) WithTLSSettings(tls *TLSSettings) *Config {
	c.TLSSettings = tls
	return c
}

// WithProxyConfig sets proxy configuration
func (c *Config) WithProxyConfig(proxy *ProxyConfig) *Config {
	c.ProxyConfig = proxy
	return c
}

// Validate checks that the configuration can be used to build a client
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
