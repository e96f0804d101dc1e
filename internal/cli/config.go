package cli

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage whatstask configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigTemplateCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

Shows which config files were loaded and the final merged configuration.
The WhatsApp access token is masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			// Display loaded files section
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			for _, info := range []domain.ConfigInfo{out.GlobalConfig, out.DataConfig} {
				if info.Exists {
					_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
				} else {
					_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
				}
			}

			_, _ = fmt.Fprintln(w)

			// Display effective config in TOML format
			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, out.EffectiveConfig)
		},
	}
}

// formatEffectiveConfig writes cfg in the same layout as the config file.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	token := ""
	if cfg.WhatsApp.AccessToken != "" {
		token = "********"
	}

	output := map[string]any{
		"store": map[string]any{
			"backend":   cfg.Store.Backend,
			"path":      cfg.Store.Path,
			"dsn":       cfg.Store.DSN,
			"namespace": cfg.Store.Namespace,
		},
		"users": map[string]any{
			"file": cfg.Users.File,
		},
		"projects": map[string]any{
			"file": cfg.Projects.File,
		},
		"notify": map[string]any{
			"backend":      cfg.Notify.Backend,
			"mode":         cfg.Notify.Mode,
			"workers":      cfg.Notify.Workers,
			"timeout":      cfg.Notify.Timeout.String(),
			"max_attempts": cfg.Notify.MaxAttempts,
			"backoff":      cfg.Notify.Backoff.String(),
			"rate_limit": map[string]any{
				"per_minute": cfg.Notify.RateLimit.PerMinute,
				"burst":      cfg.Notify.RateLimit.Burst,
				"backend":    cfg.Notify.RateLimit.Backend,
				"redis_addr": cfg.Notify.RateLimit.RedisAddr,
				"redis_db":   cfg.Notify.RateLimit.RedisDB,
			},
		},
		"whatsapp": map[string]any{
			"base_url":        cfg.WhatsApp.BaseURL,
			"api_version":     cfg.WhatsApp.APIVersion,
			"phone_number_id": cfg.WhatsApp.PhoneNumberID,
			"access_token":    token,
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
		},
		"telemetry": map[string]any{
			"enabled":      cfg.Telemetry.Enabled,
			"endpoint":     cfg.Telemetry.Endpoint,
			"insecure":     cfg.Telemetry.Insecure,
			"service_name": cfg.Telemetry.ServiceName,
		},
	}

	if err := toml.NewEncoder(w).Encode(output); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// newConfigTemplateCommand creates the config template subcommand.
func newConfigTemplateCommand(c *app.Container) *cobra.Command {
	var sections []string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Output configuration template",
		Long: `Output a configuration file template with the default values to stdout.

It does not read existing configuration files and works even if they are broken.
Use --section to print only some tables, e.g. --section notify.rate_limit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigTemplateUseCase().Execute(cmd.Context(), usecase.ShowConfigTemplateInput{
				Config:   domain.NewDefaultConfig(),
				Sections: sections,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Template)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sections, "section", nil, "Only output this table (can specify multiple)")
	return cmd
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate configuration file template",
		Long: `Generate a configuration file template.

By default, creates config.toml in the data directory.
With --global, creates ~/.config/whatstask/config.toml.

Error conditions:
- Target file already exists: error`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{
				Global: global,
				Config: domain.NewDefaultConfig(),
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Generate global configuration")

	return cmd
}
