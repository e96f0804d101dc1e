package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newUsersCommand creates the users command.
func newUsersCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users",
		Long:  `List and register the users tasks can be assigned to.`,
	}

	cmd.AddCommand(newUsersListCommand(c))
	cmd.AddCommand(newUsersAddCommand(c))

	return cmd
}

func newUsersListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No users registered")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tROLE\tPHONE")
			for _, u := range users {
				phone := u.PhoneNumber
				if phone == "" {
					phone = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name(), u.Role, phone)
			}
			return tw.Flush()
		},
	}
}

func newUsersAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name  string
		Role  string
		Phone string
	}

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register or update a user",
		Long: `Register a user in the user directory, or update an existing one.
Only admins may add users.

Examples:
  whatstask users add alice --name "Alice Smith" --role manager --phone +351912345678`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.AddUserUseCase().Execute(cmd.Context(), usecase.AddUserInput{
				ActorID: actorID(cmd),
				User: domain.User{
					ID:          args[0],
					FullName:    opts.Name,
					Role:        domain.Role(opts.Role),
					PhoneNumber: opts.Phone,
				},
			})
			if err != nil {
				return err
			}

			verb := "Added"
			if out.Replace {
				verb = "Updated"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s user %s (%s)\n", verb, out.User.ID, out.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&opts.Role, "role", string(domain.RoleUser), "Role: admin, manager, user")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "WhatsApp number")

	return cmd
}
