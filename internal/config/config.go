// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL            = "https://api.github.com/"
	DefaultGraphQLURL        = "https://api.github.com/graphql"
	DefaultCachePath         = "dashboard.json"
	DefaultTimezone          = "UTC"
	DefaultRequestsPerSecond = 10
)

type Config struct {
	GitHubToken       string
	APIURL            string
	GraphQLURL        string
	CachePath         string
	Timezone          string
	RequestsPerSecond float64
}

// Load reads .env (if present) and the process environment, filling in
// defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubToken: strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		APIURL:      os.Getenv("GITHUB_API_URL"),
		GraphQLURL:  os.Getenv("GITHUB_GRAPHQL_URL"),
		CachePath:   os.Getenv("DASHBOARD_CACHE"),
		Timezone:    os.Getenv("DASHBOARD_TIMEZONE"),
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	// go-github resolves relative paths against BaseURL, which needs the slash.
	if !strings.HasSuffix(cfg.APIURL, "/") {
		cfg.APIURL += "/"
	}
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}

	cfg.RequestsPerSecond = DefaultRequestsPerSecond
	if v := os.Getenv("GITHUB_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RequestsPerSecond = rps
		} else {
			cfg.RequestsPerSecond = -1
		}
	}

	return cfg
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.GitHubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN environment variable is not set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("GITHUB_REQUESTS_PER_SECOND must be a positive number"))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, used for hour-of-day and day-of-week buckets.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
