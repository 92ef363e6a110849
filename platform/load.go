package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads fingerprint tables from a YAML file. Sections the file
// leaves empty keep the built-in tables.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML fingerprint tables, filling empty sections from the
// defaults.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("decoding rules: %w", err)
	}
	r.applyDefaults()
	return r, nil
}

func (r *Rules) applyDefaults() {
	def := DefaultRules()
	if len(r.CMS) == 0 {
		r.CMS = def.CMS
	}
	if len(r.Frameworks) == 0 {
		r.Frameworks = def.Frameworks
	}
	if len(r.Hosting) == 0 {
		r.Hosting = def.Hosting
	}
	if len(r.Servers) == 0 {
		r.Servers = def.Servers
	}
	if len(r.CDNs) == 0 {
		r.CDNs = def.CDNs
	}
	if len(r.Technologies) == 0 {
		r.Technologies = def.Technologies
	}
}
