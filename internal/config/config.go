package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration for auth-api.
type Config struct {
	// HTTP Server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	// Storage
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Session tokens
	SessionTokenSecret string        `env:"SESSION_TOKEN_SECRET,notEmpty"`
	SessionTokenIssuer string        `env:"SESSION_TOKEN_ISSUER" envDefault:"socialplus-auth"`
	SessionTokenTTL    time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`

	// Facebook
	FacebookGraphURL  string `env:"FACEBOOK_GRAPH_URL" envDefault:"https://graph.facebook.com"`
	FacebookAppID     string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret string `env:"FACEBOOK_APP_SECRET"`

	// Google
	GoogleDiscoveryURL string `env:"GOOGLE_DISCOVERY_URL" envDefault:"https://accounts.google.com/.well-known/openid-configuration"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`

	// Microsoft
	MicrosoftProfileURL   string `env:"MICROSOFT_PROFILE_URL" envDefault:"https://apis.live.net/v5.0/me"`
	MicrosoftClientID     string `env:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `env:"MICROSOFT_CLIENT_SECRET"`

	// Twitter
	TwitterConsumerKey          string `env:"TWITTER_CONSUMER_KEY"`
	TwitterConsumerSecret       string `env:"TWITTER_CONSUMER_SECRET"`
	TwitterCallbackURL          string `env:"TWITTER_CALLBACK_URL" envDefault:"oob"`
	TwitterRequestTokenURL      string `env:"TWITTER_REQUEST_TOKEN_URL" envDefault:"https://api.twitter.com/oauth/request_token"`
	TwitterAccessTokenURL       string `env:"TWITTER_ACCESS_TOKEN_URL" envDefault:"https://api.twitter.com/oauth/access_token"`
	TwitterVerifyCredentialsURL string `env:"TWITTER_VERIFY_CREDENTIALS_URL" envDefault:"https://api.twitter.com/1.1/account/verify_credentials.json"`

	// AAD server-to-server
	AADEnabled             bool          `env:"AAD_ENABLED" envDefault:"false"`
	AADJWKSURL             string        `env:"AAD_JWKS_URL"`
	AADIssuer              string        `env:"AAD_ISSUER"`
	AADAudience            string        `env:"AAD_AUDIENCE"`
	AADRefreshJWKSInterval time.Duration `env:"AAD_JWKS_REFRESH_INTERVAL" envDefault:"5m"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTracing    bool   `env:"ENABLE_TRACING" envDefault:"false"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"auth-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"socialplus"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	for name, raw := range map[string]string{
		"GOOGLE_DISCOVERY_URL":  cfg.GoogleDiscoveryURL,
		"MICROSOFT_PROFILE_URL": cfg.MicrosoftProfileURL,
		"FACEBOOK_GRAPH_URL":    cfg.FacebookGraphURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
	}

	if cfg.AADEnabled && cfg.AADJWKSURL == "" {
		return nil, errors.New("AAD_JWKS_URL must be provided when AAD_ENABLED is set")
	}

	return cfg, nil
}
