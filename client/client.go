// Package client provides the HTTP client for the Akismet API
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

// Doer is the minimal http.Client interface the client depends on
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client sends requests to Akismet on behalf of one API key and one blog.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	config      *config.Config
	blog        *protocol.Blog
	doer        Doer
	observers   []Observer
	logger      *slog.Logger
	fingerprint string
}

// Option customizes a Client
type Option func(*Client)

// WithDoer replaces the HTTP transport
func WithDoer(d Doer) Option { return func(c *Client) { c.doer = d } }

// WithObserver registers an observer notified around every request
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new Akismet client bound to cfg and blog
func NewClient(cfg *config.Config, blog *protocol.Blog, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	if blog == nil {
		blog = &protocol.Blog{}
	}

	c := &Client{
		config:      cloneConfig(cfg),
		blog:        blog,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		fingerprint: protocol.KeyFingerprint(cfg.APIKey),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.doer == nil {
		httpClient, err := NewHTTPClient(c.config)
		if err != nil {
			return nil, err
		}
		c.doer = httpClient
	}
	return c, nil
}

// cloneConfig copies cfg so later builder calls on the caller's value do not reach the client
func cloneConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if cfg.TLSSettings != nil {
		tls := *cfg.TLSSettings
		out.TLSSettings = &tls
	}
	if cfg.ProxyConfig != nil {
		proxy := *cfg.ProxyConfig
		out.ProxyConfig = &proxy
	}
	return &out
}

// NewHTTPClient builds the default transport from the TLS, proxy and timeout settings
func NewHTTPClient(cfg *config.Config) (*http.Client, error) {
	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout * float64(time.Second)),
	}

	// Configure TLS if specified
	if cfg.TLSSettings != nil {
		tlsConfig := &tls.Config{}

		if cfg.TLSSettings.CAPath != nil {
			caCert, err := os.ReadFile(*cfg.TLSSettings.CAPath)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("failed to read CA file: %v", err))
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, errors.NewConfigError("failed to append CA certificate")
			}
			tlsConfig.RootCAs = caCertPool
		}

		if cfg.TLSSettings.CertPath != "" && cfg.TLSSettings.KeyPath != "" {
			cert, err := tls.LoadX509KeyPair(cfg.TLSSettings.CertPath, cfg.TLSSettings.KeyPath)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("failed to load client certificate: %v", err))
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}

		client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		}
	}

	// Configure proxy if specified
	if cfg.ProxyConfig != nil {
		proxyURL, err := url.Parse(cfg.ProxyConfig.ProxyURL)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid proxy URL: %v", err))
		}

		if cfg.ProxyConfig.Username != nil && cfg.ProxyConfig.Password != nil {
			proxyURL.User = url.UserPassword(*cfg.ProxyConfig.Username, *cfg.ProxyConfig.Password)
		}

		if client.Transport == nil {
			client.Transport = &http.Transport{}
		}
		transport := client.Transport.(*http.Transport)
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return client, nil
}

// APIKey returns the API key the client is bound to
func (c *Client) APIKey() string { return c.config.APIKey }

// Blog returns the blog the client is bound to
func (c *Client) Blog() *protocol.Blog { return c.blog }

// IsTest reports whether requests are sent in test mode
func (c *Client) IsTest() bool { return c.config.IsTest }

// UserAgent returns the User-Agent header value sent with every request
func (c *Client) UserAgent() string { return c.config.UserAgent }

// CheckComment asks Akismet whether comment is spam
func (c *Client) CheckComment(ctx context.Context, comment *protocol.Comment) (protocol.CheckResult, error) {
	resp, err := NewRequest(c, protocol.CommentCheck, comment.Fields()).Execute(ctx)
	if err != nil {
		return protocol.Ham, err
	}

	return protocol.CheckResultFrom(resp.Body, resp.Header), nil
}

// SubmitHam reports a comment that was wrongly flagged as spam
func (c *Client) SubmitHam(ctx context.Context, comment *protocol.Comment) error {
	return c.submit(ctx, protocol.SubmitHam, comment)
}

// SubmitSpam reports a spam comment that was not caught
func (c *Client) SubmitSpam(ctx context.Context, comment *protocol.Comment) error {
	return c.submit(ctx, protocol.SubmitSpam, comment)
}

func (c *Client) submit(ctx context.Context, command protocol.AkismetCommand, comment *protocol.Comment) error {
	_, err := NewRequest(c, command, comment.Fields()).
		WithBodyCheck(expectBody(command, protocol.SuccessfulSubmission)).
		Execute(ctx)
	return err
}

// expectBody rejects any response body other than want
func expectBody(command protocol.AkismetCommand, want string) func(string) error {
	return func(body string) error {
		if body != want {
			return errors.NewProtocolError(fmt.Sprintf("%s: invalid response body %q", command, body))
		}
		return nil
	}
}

// VerifyKey checks that the API key is valid for the blog. An invalid key yields
// false without error.
func (c *Client) VerifyKey(ctx context.Context) (bool, error) {
	fields := map[string]string{protocol.KeyField: c.config.APIKey}
	resp, err := NewRequest(c, protocol.VerifyKey, fields).Execute(ctx)
	if err != nil {
		return false, err
	}
	return resp.Body == "valid", nil
}
