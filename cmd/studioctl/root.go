package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type commandDeps struct {
	migrate   func(ctx context.Context, command string, args ...string) error
	provision func(ctx context.Context, in provisionInput) (*provisionResult, error)
}

var migrateCommands = map[string]bool{
	"up": true, "up-by-one": true, "up-to": true,
	"down": true, "down-to": true,
	"redo": true, "reset": true,
	"status": true, "version": true,
}

func newRootCmd(deps commandDeps) *cobra.Command {
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Administer the studio lessons database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(deps), newProvisionTeacherCmd(deps))
	return root
}

func newMigrateCmd(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS]",
		Short: "Run goose migrations (up, down, status, version, redo, reset, up-to, down-to)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !migrateCommands[command] {
				return fmt.Errorf("unknown migrate command %q", command)
			}
			if (command == "up-to" || command == "down-to") && len(args) < 2 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if err := deps.migrate(cmd.Context(), command, args[1:]...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", command)
			return nil
		},
	}
}

func newProvisionTeacherCmd(deps commandDeps) *cobra.Command {
	var in provisionInput
	cmd := &cobra.Command{
		Use:   "provision-teacher",
		Short: "Create a login and its teacher profile, or reuse an existing login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Email == "" {
				return errors.New("--email is required")
			}
			res, err := deps.provision(cmd.Context(), in)
			if err != nil {
				return err
			}
			state := "existing user"
			if res.UserCreated {
				state = "new user"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "teacher %s provisioned for %s (%s)\n", res.Teacher.ID, in.Email, state)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Email, "email", "", "login email")
	flags.StringVar(&in.Password, "password", "", "login password, required for new users")
	flags.StringVar(&in.FullName, "name", "", "full name, also used as the teacher display name")
	flags.Int64Var(&in.PerSessionRate, "rate", 0, "per-session rate used by monthly reports")
	flags.StringVar(&in.Currency, "currency", "", "ISO currency code, defaults to VND")
	return cmd
}
