package ingest

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sites.yaml
var sitesYAML []byte

// Collection methods.
const (
	MethodG2BAPI   = "g2b_api"
	MethodWebCrawl = "web_crawl"
)

// Registry holds the configuration for all collection sources.
type Registry struct {
	Koneps            KonepsConfig `yaml:"koneps"`
	CrawlLookbackDays int          `yaml:"crawl_lookback_days"`
	Sites             []Site       `yaml:"sites"`
}

// KonepsConfig configures the public bid-list API.
type KonepsConfig struct {
	BaseURL      string `yaml:"base_url"`
	ServiceKey   string `yaml:"service_key"`
	PageSize     int    `yaml:"page_size"`
	MaxPages     int    `yaml:"max_pages"`
	LookbackDays int    `yaml:"lookback_days"`
}

// Site is one monitored agency.
type Site struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Agency        string `yaml:"agency"`
	CollectMethod string `yaml:"collect_method"`
	URL           string `yaml:"url,omitempty"`
	Enabled       bool   `yaml:"enabled"`
	Priority      string `yaml:"priority"` // high, medium, low
	WKMGPartner   bool   `yaml:"wkmg_partner"`
}

// LoadRegistry parses the embedded site registry, expanding ${VAR}
// references from the environment.
func LoadRegistry() (*Registry, error) {
	expanded := os.ExpandEnv(string(sitesYAML))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("parse site registry: %w", err)
	}
	if reg.CrawlLookbackDays <= 0 {
		reg.CrawlLookbackDays = 7
	}
	if reg.Koneps.PageSize <= 0 {
		reg.Koneps.PageSize = 100
	}
	if reg.Koneps.MaxPages <= 0 {
		reg.Koneps.MaxPages = 10
	}
	if reg.Koneps.LookbackDays <= 0 {
		reg.Koneps.LookbackDays = 3
	}

	seen := make(map[string]struct{}, len(reg.Sites))
	for _, s := range reg.Sites {
		if s.ID == "" || s.Agency == "" {
			return nil, fmt.Errorf("site registry: entry %q missing id or agency", s.Name)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("site registry: duplicate id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		switch s.CollectMethod {
		case MethodG2BAPI, MethodWebCrawl:
		default:
			return nil, fmt.Errorf("site registry: site %q has unknown collect_method %q", s.ID, s.CollectMethod)
		}
		if s.CollectMethod == MethodWebCrawl && s.URL == "" {
			return nil, fmt.Errorf("site registry: crawl site %q has no url", s.ID)
		}
	}
	return &reg, nil
}

// EnabledSites filters by collection method.
func (r *Registry) EnabledSites(method string) []Site {
	var out []Site
	for _, s := range r.Sites {
		if s.Enabled && s.CollectMethod == method {
			out = append(out, s)
		}
	}
	return out
}

// PartnerAgencies lists agencies flagged as existing partners, used to seed
// the scorer's alias expansion.
func (r *Registry) PartnerAgencies() []string {
	var out []string
	for _, s := range r.Sites {
		if s.WKMGPartner {
			out = append(out, s.Agency)
		}
	}
	return out
}

// SiteByAgency finds the registry entry for an agency name, if any.
func (r *Registry) SiteByAgency(agency string) (Site, bool) {
	for _, s := range r.Sites {
		if s.Agency == agency || s.Name == agency {
			return s, true
		}
	}
	return Site{}, false
}
