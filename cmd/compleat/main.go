// Package main is the entry point for the compleat CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cpcli "github.com/NikitaCOEUR/compleat/internal/cli"
	"github.com/NikitaCOEUR/compleat/internal/render"
	"github.com/NikitaCOEUR/compleat/internal/trace"
	"github.com/NikitaCOEUR/compleat/pkg/version"
	"github.com/urfave/cli/v3"
)

func main() {
	stop := trace.Init()
	err := newApp(appPaths{
		cache: cpcli.DefaultCachePath(),
		auth:  cpcli.DefaultAuthPath(),
	}).Run(context.Background(), os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appPaths locates the state files kept outside the project
type appPaths struct {
	cache string
	auth  string
}

// engineParams reads the global flags shared by every engine command
func engineParams(cmd *cli.Command, paths appPaths) cpcli.EngineParams {
	return cpcli.EngineParams{
		Dir:        cmd.String("dir"),
		ConfigPath: cmd.String("config"),
		LogLevel:   cmd.String("log-level"),
		Greedy:     cmd.Bool("greedy"),
		CachePath:  paths.cache,
		AuthPath:   paths.auth,
		LogOutput:  cmd.Root().ErrWriter,
	}
}

func newApp(paths appPaths) *cli.Command {
	return &cli.Command{
		Name:                  "compleat",
		Usage:                 "Completion dispatch engine for interactive shells",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error), overrides the config",
				Sources: cli.EnvVars("COMPLEAT_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file to use instead of the local config search",
				Sources: cli.EnvVars("COMPLEAT_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory configs are searched from and files are completed in",
			},
			&cli.BoolFlag{
				Name:    "greedy",
				Aliases: []string{"g"},
				Usage:   "Split words on whitespace and equals signs only",
				Sources: cli.EnvVars("COMPLEAT_GREEDY"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "complete",
				Usage:     "Print the completions for a block of text (read from stdin without argument)",
				ArgsUsage: "[text]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "cursor",
						Value: -1,
						Usage: "Rune offset of the cursor in the text (end of text by default)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output format: " + strings.Join(render.Formats, ", "),
					},
					&cli.StringFlag{
						Name:  "template",
						Usage: "Go template for the template output",
					},
					&cli.BoolFlag{
						Name:  "group",
						Usage: "Group text output by kind",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var text string
					if cmd.Args().Len() > 0 {
						text = strings.Join(cmd.Args().Slice(), " ")
					} else {
						reader := cmd.Root().Reader
						if reader == nil {
							reader = os.Stdin
						}
						block, err := cpcli.ReadBlock(reader)
						if err != nil {
							return fmt.Errorf("failed to read stdin: %w", err)
						}
						text = block
					}

					return cpcli.Complete(ctx, cpcli.CompleteParams{
						EngineParams: engineParams(cmd, paths),
						Text:         text,
						Cursor:       cmd.Int("cursor"),
						Output:       cmd.String("output"),
						Template:     cmd.String("template"),
						Group:        cmd.Bool("group"),
						Out:          cmd.Root().Writer,
					})
				},
			},
			{
				Name:  "matchers",
				Usage: "List the registered matchers in dispatch order",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the list as JSON",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Matchers(cpcli.MatchersParams{
						EngineParams: engineParams(cmd, paths),
						JSON:         cmd.Bool("json"),
						Out:          cmd.Root().Writer,
					})
				},
			},
			{
				Name:  "status",
				Usage: "Show the configuration, matchers and module cache in use",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Status(cpcli.StatusParams{
						EngineParams: engineParams(cmd, paths),
						Out:          cmd.Root().Writer,
					})
				},
			},
			{
				Name:      "allow",
				Usage:     "Trust the matcher scripts of a project",
				ArgsUsage: "[path]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Allow(cpcli.AllowParams{
						EngineParams: engineParams(cmd, paths),
						Path:         cmd.Args().First(),
						Out:          cmd.Root().Writer,
					})
				},
			},
			{
				Name:      "revoke",
				Usage:     "Revoke the trust of a project",
				ArgsUsage: "[path]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Revoke(cpcli.AllowParams{
						EngineParams: engineParams(cmd, paths),
						Path:         cmd.Args().First(),
						Out:          cmd.Root().Writer,
					})
				},
			},
			{
				Name:  "list",
				Usage: "List trusted projects",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.List(paths.auth, cmd.Root().Writer)
				},
			},
			{
				Name:  "init",
				Usage: "Create a sample config in current folder or global config",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "global",
						Aliases: []string{"g"},
						Usage:   "Create global config file instead of local",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "yml",
						Usage:   "Config format: yml, toml or json",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Init(cpcli.InitParams{
						Global: cmd.Bool("global"),
						Format: cmd.String("format"),
						Force:  cmd.Bool("force"),
						Dir:    cmd.String("dir"),
						Out:    cmd.Root().Writer,
					})
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a compleat configuration file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					configPath := cmd.String("config")
					if cmd.Args().Len() > 0 {
						configPath = cmd.Args().Get(0)
					}
					return cpcli.Validate(configPath, cmd.Root().Writer)
				},
			},
			{
				Name:  "edit",
				Usage: "Edit or create a compleat configuration file in current directory or global config",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "global",
						Aliases: []string{"g"},
						Usage:   "Edit global config file instead of local",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Edit(cmd.Bool("global"))
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for compleat configuration files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return cpcli.Schema(outputPath, cmd.Root().Writer)
				},
			},
			{
				Name:  "clean",
				Usage: "Clear the module cache",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Clear every cached module list instead of just the configured search paths",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return cpcli.Clean(cpcli.CleanParams{
						EngineParams: engineParams(cmd, paths),
						All:          cmd.Bool("all"),
						Out:          cmd.Root().Writer,
					})
				},
			},
		},
	}
}
