package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
)

func newInitConfigCmd() *cobra.Command {
	var (
		names  []string
		days   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a generator configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildGeneratorConfig(names, days)
			if err != nil {
				return err
			}
			if err := cfg.WriteFile(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d certificate(s) to %s\n", len(cfg.Certificates), output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&names, "name", "n", nil, "certificate name, optionally name=subject (repeatable)")
	flags.IntVar(&days, "days", 365, "validity period in days")
	flags.StringVarP(&output, "output", "o", "config.yml", "file to write")

	return cmd
}

func buildGeneratorConfig(names []string, days int) (fixture.GeneratorConfig, error) {
	if days <= 0 {
		return fixture.GeneratorConfig{}, fmt.Errorf("--days must be positive")
	}

	cfg := fixture.GeneratorConfig{Certificates: make([]fixture.Certificate, 0, len(names))}
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name, subject, found := strings.Cut(raw, "=")
		if name == "" {
			return fixture.GeneratorConfig{}, fmt.Errorf("invalid --name %q", raw)
		}
		if seen[name] {
			return fixture.GeneratorConfig{}, fmt.Errorf("duplicate certificate name %q", name)
		}
		seen[name] = true
		if !found || subject == "" {
			subject = "CN=" + name
		}
		cfg.Certificates = append(cfg.Certificates, fixture.Certificate{
			Name:         name,
			Subject:      subject,
			ValidityDays: days,
		})
	}
	return cfg, nil
}
