package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tagvault/internal"
	pkgconfig "github.com/starford/tagvault/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// withVault opens the configured vault for a one-shot command. Logs go to
// stderr at warn level so stdout stays machine-readable.
func withVault(ctx context.Context, cmd *cli.Command, fn func(v *internal.Vault) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	v, err := internal.OpenVault(cfg, logger)
	if err != nil {
		return err
	}
	defer v.Close()
	return fn(v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listTags(ctx context.Context, cmd *cli.Command) error {
	return withVault(ctx, cmd, func(v *internal.Vault) error {
		summaries, err := v.Summaries(ctx)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return printJSON(cmd.Root().Writer, summaries)
		}
		for _, s := range summaries {
			fmt.Fprintf(cmd.Root().Writer, "%s\t%d sections\t%d files\n", s.Tag, s.Sections, s.Files)
		}
		return nil
	})
}

func showTag(ctx context.Context, cmd *cli.Command) error {
	tag := cmd.Args().First()
	if tag == "" {
		return cli.Exit("tag argument is required", 2)
	}
	return withVault(ctx, cmd, func(v *internal.Vault) error {
		entries, err := v.GetContent(ctx, tag)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return printJSON(cmd.Root().Writer, entries)
		}
		for _, e := range entries {
			header := e.FilePath
			if e.Date != "" {
				header = e.Date + "  " + e.FilePath
			}
			fmt.Fprintf(cmd.Root().Writer, "== %s\n%s\n\n", header, e.Content)
		}
		return nil
	})
}

func deleteTag(ctx context.Context, cmd *cli.Command) error {
	tag := cmd.Args().First()
	if tag == "" {
		return cli.Exit("tag argument is required", 2)
	}
	if !cmd.Bool("yes") {
		return cli.Exit(fmt.Sprintf("refusing to delete %s from every note without --yes", tag), 2)
	}
	return withVault(ctx, cmd, func(v *internal.Vault) error {
		report, err := v.DeleteContent(ctx, tag)
		if perr := printJSON(cmd.Root().Writer, report); perr != nil {
			return perr
		}
		if err != nil {
			return err
		}
		if len(report.FilesFailed) > 0 {
			return cli.Exit(fmt.Sprintf("%d files could not be rewritten", len(report.FilesFailed)), 1)
		}
		return nil
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "tagvault",
		Usage:   "Tagged-section index over a folder of Markdown notes",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault directory (overrides vault.path)",
				Sources: cli.EnvVars("TAGVAULT_VAULT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and live event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:  "tags",
				Usage: "Inspect and edit tags from the command line",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List every tag with section and file counts",
						Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Print JSON"}},
						Action: listTags,
					},
					{
						Name:      "show",
						Usage:     "Print every section tagged with a tag",
						ArgsUsage: "<tag>",
						Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Print JSON"}},
						Action:    showTag,
					},
					{
						Name:      "delete",
						Usage:     "Delete every section tagged with a tag from every note",
						ArgsUsage: "<tag>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
						},
						Action: deleteTag,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
