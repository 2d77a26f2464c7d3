package config

import (
	"strings"
	"time"

	"github.com/nao1215/jobguard/internal/model"
)

// APIConfig holds classifier connection settings from the config file.
type APIConfig struct {
	// URL is the classifier base URL.
	URL string `yaml:"url,omitempty"`

	// Key is sent as X-Api-Key when set.
	Key string `yaml:"key,omitempty"`

	// Timeout overrides the request timeout (e.g. "45s").
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SiteConfig holds settings for one job board host.
type SiteConfig struct {
	// Disabled skips scanning pages of this host.
	Disabled bool `yaml:"disabled,omitempty"`

	// Headers are added to page download requests for this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ExtraPhrases are highlighted after the classifier's phrases.
	// Useful for board-specific scam wording the classifier misses.
	ExtraPhrases []model.Phrase `yaml:"extraPhrases,omitempty"`

	// MaxPhrases overrides the global phrase cap when non-zero.
	MaxPhrases int `yaml:"maxPhrases,omitempty"`
}

// File represents the structure of the .jobguard configuration file.
type File struct {
	// API configures the classifier connection.
	API APIConfig `yaml:"api,omitempty"`

	// Defaults apply to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (e.g. "jobs.example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// NewFile returns an empty config file.
func NewFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// GetSiteConfig returns the settings for host, merged over the defaults.
// Host matching ignores case and a leading "www.".
func (f *File) GetSiteConfig(host string) SiteConfig {
	result := f.Defaults
	result.ExtraPhrases = append([]model.Phrase(nil), f.Defaults.ExtraPhrases...)

	site, ok := f.lookup(host)
	if !ok {
		return result
	}

	if site.Disabled {
		result.Disabled = true
	}
	if site.MaxPhrases != 0 {
		result.MaxPhrases = site.MaxPhrases
	}
	if len(site.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(site.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range site.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	result.ExtraPhrases = append(result.ExtraPhrases, site.ExtraPhrases...)

	return result
}

func (f *File) lookup(host string) (SiteConfig, bool) {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for name, site := range f.Sites {
		if strings.TrimPrefix(strings.ToLower(name), "www.") == host {
			return site, true
		}
	}
	return SiteConfig{}, false
}
