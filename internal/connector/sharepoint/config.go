package sharepoint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// Settings keys recognized by the publisher.
const (
	SettingSiteURL  = "site_url"
	SettingUsername = "username"
	SettingPassword = "password"
	SettingDomain   = "domain"
)

// Config holds the connection parameters of one SharePoint site.
type Config struct {
	SiteURL  string
	Username string
	Password string
	Domain   string
}

// ParseConfig extracts configuration from a settings bag.
func ParseConfig(settings endpoint.Settings) (*Config, error) {
	cfg := &Config{
		SiteURL:  strings.TrimSuffix(getString(settings, SettingSiteURL, "siteUrl"), "/"),
		Username: getString(settings, SettingUsername, "userName"),
		Password: getString(settings, SettingPassword, ""),
		Domain:   getString(settings, SettingDomain, ""),
	}

	if cfg.SiteURL == "" {
		return nil, endpoint.WrapError(endpoint.CodeInvalidConfig, false, fmt.Errorf("%s is required", SettingSiteURL))
	}
	u, err := url.Parse(cfg.SiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, endpoint.WrapError(endpoint.CodeInvalidConfig, false, fmt.Errorf("%s must be an absolute http(s) URL: %q", SettingSiteURL, cfg.SiteURL))
	}

	return cfg, nil
}

func getString(m endpoint.Settings, key, alt string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	if alt != "" {
		if v, ok := m[alt].(string); ok {
			return v
		}
	}
	return ""
}
