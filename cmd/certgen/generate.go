package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldsam/cert-generator/internal/app/certgen"
	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
	"github.com/goldsam/cert-generator/internal/runtime"
	"github.com/goldsam/cert-generator/internal/runtime/docker"
)

type generateOptions struct {
	configPath string
	outDir     string
	volume     string
	image      string
	runtime    string
	platform   string
	timeout    time.Duration
	alwaysPull bool
}

func newGenerateCmd(cfg appConfig) *cobra.Command {
	opts := generateOptions{
		image:    cfg.Image,
		runtime:  cfg.Runtime,
		platform: cfg.Platform,
		timeout:  cfg.StartupTimeout,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the generator once and collect its certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			rt, err := runtime.NewDefaultRegistry(slog.Default(), docker.Config{Platform: opts.platform}).Open(opts.runtime)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := rt.Close(); cerr != nil {
					slog.Warn("failed to close runtime", "error", cerr)
				}
			}()
			return runGenerate(cmd.Context(), cmd, rt, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "generator configuration file")
	flags.StringVarP(&opts.outDir, "out", "o", "", "host directory receiving the certificates")
	flags.StringVar(&opts.volume, "volume", "", "named volume receiving the certificates")
	flags.StringVar(&opts.image, "image", opts.image, "generator image reference")
	flags.StringVar(&opts.runtime, "runtime", opts.runtime, "container runtime (docker, testcontainers)")
	flags.StringVar(&opts.platform, "platform", opts.platform, "image platform, e.g. linux/amd64")
	flags.DurationVar(&opts.timeout, "timeout", opts.timeout, "how long to wait for the generator")
	flags.BoolVar(&opts.alwaysPull, "pull", false, "always pull the image")
	_ = cmd.MarkFlagRequired("config")
	cmd.MarkFlagsMutuallyExclusive("out", "volume")
	cmd.MarkFlagsOneRequired("out", "volume")

	return cmd
}

func (o generateOptions) validate() error {
	if o.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}
	if o.outDir == "" && o.volume == "" {
		return fmt.Errorf("one of --out or --volume is required")
	}
	return nil
}

func runGenerate(ctx context.Context, cmd *cobra.Command, rt ports.ContainerRuntime, opts generateOptions) error {
	configPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	genCfg, err := fixture.LoadGeneratorConfig(configPath)
	if err != nil {
		return err
	}

	builder := certgen.NewBuilder(rt).
		WithImage(opts.image).
		WithHostConfiguration(configPath).
		WithStartupTimeout(opts.timeout).
		WithAlwaysPull(opts.alwaysPull)

	if opts.outDir != "" {
		outDir, err := filepath.Abs(opts.outDir)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		opts.outDir = outDir
		builder = builder.WithHostCertificates(outDir)
	} else {
		builder = builder.WithVolumeCertificates(opts.volume)
	}

	ctr, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if serr := ctr.Stop(context.Background()); serr != nil {
			slog.Warn("failed to remove generator container", "error", serr)
		}
	}()

	if err := ctr.Start(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, cert := range genCfg.Certificates {
		if opts.outDir != "" {
			for _, name := range []string{cert.Name + ".crt", cert.Name + ".key"} {
				path := filepath.Join(opts.outDir, name)
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("certificate %s missing: %w", cert.Name, err)
				}
				fmt.Fprintln(out, path)
			}
			continue
		}

		crt, key, err := ctr.Certificate(ctx, cert.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s:%s/%s.crt (%d bytes)\n", opts.volume, fixture.CertsPath, cert.Name, len(crt))
		fmt.Fprintf(out, "%s:%s/%s.key (%d bytes)\n", opts.volume, fixture.CertsPath, cert.Name, len(key))
	}

	if len(genCfg.Certificates) == 0 {
		slog.Info("configuration lists no certificates, nothing was generated")
	}
	return nil
}
