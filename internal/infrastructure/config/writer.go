package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the config written by yichus init. Unset api_key
// fields fall back to OPENAI_API_KEY and QDRANT_API_KEY at load time.
const DefaultConfigYAML = `# Yichus configuration

llm:
  provider: openai
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY)

embedder:
  provider: openai
  # Rule docs are embedded with this model; rerun 'yichus rules index'
  # after changing it.
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY)

qdrant:
  host: localhost
  port: 6334
  collection: yichus_rules
  # api_key: your-api-key (for Qdrant Cloud, or set QDRANT_API_KEY)
`

// WriteDefault creates the .yichus directory and writes the default
// config. It refuses to overwrite an existing config.
func WriteDefault(basePath string) error {
	if Exists(basePath) {
		return fmt.Errorf("config file already exists: %s", ConfigFilePath(basePath))
	}

	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write persists cfg to the workspace config file, creating the config
// directory if needed.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
