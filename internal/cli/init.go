package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var admin struct {
		ID    string
		Name  string
		Phone string
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the whatstask data directory",
		Long: `Initialize the whatstask data directory.

This command creates the data directory (default ./.whatstask) with:
- the task store for the configured backend
- logs/: directory for log files
- users.yaml: the user directory, when --admin is given

Running init again leaves existing data alone.

Examples:
  # Initialize and register the first admin
  whatstask init --admin ada --admin-name "Ada Admin" --admin-phone +351912345678`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.InitStoreInput{DataDir: c.Config.DataDir}
			if admin.ID != "" {
				in.Admin = domain.User{
					ID:          admin.ID,
					FullName:    admin.Name,
					Role:        domain.RoleAdmin,
					PhoneNumber: admin.Phone,
				}
			}

			out, err := c.InitStoreUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "whatstask already initialized in %s\n", out.DataDir)
			} else {
				_, _ = fmt.Fprintf(w, "Initialized whatstask in %s (%s store)\n", out.DataDir, c.AppConfig.Store.Backend)
			}
			if out.AdminRegistered {
				_, _ = fmt.Fprintf(w, "Registered admin %s\n", admin.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&admin.ID, "admin", "", "ID of the first admin user")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "", "Full name of the first admin")
	cmd.Flags().StringVar(&admin.Phone, "admin-phone", "", "WhatsApp number of the first admin")

	return cmd
}
