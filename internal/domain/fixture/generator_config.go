package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Certificate describes one certificate/key pair the generator should produce.
type Certificate struct {
	Name         string `yaml:"name"`
	Subject      string `yaml:"subject"`
	ValidityDays int    `yaml:"validityDays"`
}

// GeneratorConfig is the document the generator reads from ConfigPath.
type GeneratorConfig struct {
	Certificates []Certificate `yaml:"certificates"`
}

// Marshal renders the configuration as YAML. A config without certificates renders an
// empty list rather than null so the generator still accepts it.
func (c GeneratorConfig) Marshal() ([]byte, error) {
	if c.Certificates == nil {
		c.Certificates = []Certificate{}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal generator config: %w", err)
	}
	return data, nil
}

// WriteFile writes the configuration to path.
func (c GeneratorConfig) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write generator config: %w", err)
	}
	return nil
}

// LoadGeneratorConfig reads a generator configuration from path.
func LoadGeneratorConfig(path string) (GeneratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GeneratorConfig{}, fmt.Errorf("read generator config: %w", err)
	}
	var cfg GeneratorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GeneratorConfig{}, fmt.Errorf("parse generator config: %w", err)
	}
	return cfg, nil
}

// OutputFiles returns the file names the generator writes for each certificate.
func (c GeneratorConfig) OutputFiles() []string {
	files := make([]string, 0, 2*len(c.Certificates))
	for _, cert := range c.Certificates {
		files = append(files, cert.Name+".crt", cert.Name+".key")
	}
	return files
}
