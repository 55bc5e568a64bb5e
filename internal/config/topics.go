package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Topic is a subscribable news category with its search keywords and the
// emails of its active subscribers. The file form is the standalone
// alternative to the database-backed topic store.
type Topic struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Subscribers []string `yaml:"subscribers"`
}

// TopicsConfig is the YAML config structure:
//
// topics:
//   - id: 1
//     name: Fintech
//     keywords: [ ... ]
//     subscribers: [ ... ]
type TopicsConfig struct {
	Topics []Topic `yaml:"topics"`
}

// LoadTopics reads the topic list from a YAML file.
func LoadTopics(path string) ([]Topic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg TopicsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}
	return cfg.Topics, nil
}
