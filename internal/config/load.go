package config

import (
	"fmt"
	"os"
)

// Load reads and parses a manifest from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Arm finds an arm by name.
func (c Config) Arm(name string) (ArmConfig, error) {
	for _, arm := range c.Arms {
		if arm.Name == name {
			return arm, nil
		}
	}
	return ArmConfig{}, fmt.Errorf("no arm named %q in manifest", name)
}
