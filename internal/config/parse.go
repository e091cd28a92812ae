package config

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse decodes a manifest. Unknown fields and multiple YAML documents are
// rejected so typos fail loudly instead of silently running a default.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse manifest: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if len(cfg.Arms) == 0 {
		return fmt.Errorf("manifest has no arms")
	}
	seen := make(map[string]bool, len(cfg.Arms))
	for _, arm := range cfg.Arms {
		if arm.Name == "" {
			return fmt.Errorf("arm with empty name")
		}
		if seen[arm.Name] {
			return fmt.Errorf("duplicate arm name %q", arm.Name)
		}
		seen[arm.Name] = true

		switch arm.Strategy {
		case StrategyZeroShot, StrategyFewShot:
			if arm.Model == "" {
				return fmt.Errorf("arm %q: missing model", arm.Name)
			}
			if arm.Strategy == StrategyFewShot && arm.ExemplarYear == 0 {
				return fmt.Errorf("arm %q: few-shot strategy needs exemplar_year", arm.Name)
			}
		case StrategyFileSearch:
			if arm.AssistantID == "" {
				return fmt.Errorf("arm %q: file-search strategy needs assistant_id", arm.Name)
			}
		default:
			return fmt.Errorf("arm %q: unknown strategy %q", arm.Name, arm.Strategy)
		}

		if arm.Ensembling < 1 {
			return fmt.Errorf("arm %q: ensembling must be at least 1, got %d", arm.Name, arm.Ensembling)
		}
		if arm.Exemplars < 0 {
			return fmt.Errorf("arm %q: negative exemplar count %d", arm.Name, arm.Exemplars)
		}
		if len(arm.Years) == 0 {
			return fmt.Errorf("arm %q: no years configured", arm.Name)
		}
	}
	return nil
}
