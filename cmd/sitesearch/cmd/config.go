package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cableblog/sitesearch/configs"
	"github.com/cableblog/sitesearch/internal/config"
	"github.com/cableblog/sitesearch/internal/output"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage sitesearch configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/sitesearch/config.yaml)
  3. Project config (.sitesearch.yaml)
  4. Environment variables (SITESEARCH_*)
  5. Command-line flags`,
		Example: `  # Create a project config from the template
  sitesearch config init

  # Show effective configuration
  sitesearch config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd(root))
	cmd.AddCommand(newConfigShowCmd(root))
	cmd.AddCommand(newConfigPathCmd(root))
	cmd.AddCommand(newConfigRestoreCmd(root))

	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var (
		force    bool
		user     bool
		resolved bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Write the commented configuration template to .sitesearch.yaml in the
config directory, or to the user config with --user.

With --resolved the effective configuration (defaults, config files,
environment and flags merged) is written instead of the template.

An existing file is left alone unless --force is given; it is then backed
up next to the file before being overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := root.configPath(user)
			if err != nil {
				return err
			}
			write := writeTemplate
			if resolved {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				write = cfg.WriteYAML
			}
			return runConfigInit(cmd, path, force, write)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Write the effective configuration instead of the template")

	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, files, environment and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := root.configPath(user)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Print the user config path")

	return cmd
}

func newConfigRestoreCmd(root *rootOptions) *cobra.Command {
	var (
		user bool
		list bool
	)

	cmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore a configuration backup",
		Long: `Restore the configuration file from a backup made by 'config init --force'.
Without an argument the newest backup is restored. The current file is
backed up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := root.configPath(user)
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			backups, err := config.ListBackups(path)
			if err != nil {
				return err
			}
			if list {
				for _, b := range backups {
					out.Status("", b)
				}
				return nil
			}

			var backup string
			switch {
			case len(args) == 1:
				backup = args[0]
			case len(backups) > 0:
				backup = backups[0]
			default:
				out.Warningf("No backups of %s", path)
				return nil
			}

			if err := config.Restore(backup, path); err != nil {
				return err
			}
			out.Successf("Restored %s", path)
			out.Statusf("💾", "From: %s", backup)
			return nil
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Restore the user config instead of the project config")
	cmd.Flags().BoolVar(&list, "list", false, "List backups, newest first")

	return cmd
}

// configPath returns the project config path in the config directory, or
// the user config path.
func (o *rootOptions) configPath(user bool) (string, error) {
	if user {
		return config.GetUserConfigPath(), nil
	}
	dir := o.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	return config.ProjectConfigPath(dir), nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, path string, force bool, write func(path string) error) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to overwrite it (a backup is kept)")
			return nil
		}

		backup, err := config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := write(path); err != nil {
		return err
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Status("📋", "Run 'sitesearch config show' to verify")
	return nil
}
