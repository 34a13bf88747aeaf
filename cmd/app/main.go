package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/sitekit/internal"
	"github.com/starford/sitekit/internal/apperr"
	pkgconfig "github.com/starford/sitekit/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Validate(ctx, internal.ValidateOptions{
		JSONOut: cmd.String("json"),
		Watch:   cmd.Bool("watch"),
	}, opts...)
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Analyze(ctx, internal.AnalyzeOptions{
		JSONOut: cmd.String("json"),
	}, opts...)
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Render(ctx, internal.RenderOptions{
		OutDir: cmd.String("out"),
	}, opts...)
}

func newCommand() *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "json",
			Usage: "Also write the result as JSON to `FILE`",
		}
	}

	return &cli.Command{
		Name:  "sitekit",
		Usage: "Build-time tooling for the site: tag governance and markdown rendering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "sitekit.yaml",
				Value:       "sitekit.yaml",
				Sources:     cli.EnvVars("SITEKIT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Check post tags against the naming rules and canonical taxonomy",
				Action: runValidate,
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-validate whenever content changes",
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Report tag reuse and consolidation candidates",
				Action: runAnalyze,
				Flags:  []cli.Flag{jsonFlag()},
			},
			{
				Name:   "render",
				Usage:  "Render posts to HTML fragments with annotated footnotes",
				Action: runRender,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory (overrides render.out_dir)",
					},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, apperr.ErrTagIssues) {
			os.Exit(1)
		}
		slog.Error("Fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
