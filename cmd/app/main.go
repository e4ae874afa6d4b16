package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/preview"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func generate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("generate error: %w", err)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "raido",
		Usage:  "Publish locally archived online courses as flow documents with deduplicated remote assets",
		Action: generate,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Regenerate and publish all course documents",
				Action: generate,
			},
			{
				Name:  "backup",
				Usage: "Publish the catalog database to the document sink",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Backup(ctx, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "prune",
				Usage: "Remove duplicate or matching objects from the blob store",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "duplicates",
						Usage: "Delete objects whose hash already exists under another key",
					},
					&cli.StringFlag{
						Name:  "ext",
						Usage: "Delete objects whose key ends with this extension (e.g. .pdf)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					duplicates := cmd.Bool("duplicates")
					ext := cmd.String("ext")
					if !duplicates && ext == "" {
						return fmt.Errorf("nothing to prune: pass --duplicates and/or --ext")
					}
					return internal.Prune(ctx, duplicates, ext, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the archive root and generated output for relative-mode preview",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
						Level: cfg.App.LogLevel,
					}))
					return preview.Serve(ctx, cfg.Preview.Address(), cfg.Archive.Root, cfg.Sink.OutDir, logger)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
