package main

import (
	"fmt"

	"go-clinic-scheduling/cmd/bootstrap"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/pkg/validator"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &dto.RegisterAdminRequest{}
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.FullName, _ = cmd.Flags().GetString("name")

			v := validator.NewValidator()
			if err := v.Validate(req); err != nil {
				return fmt.Errorf("invalid input: %v", v.FormatValidationErrors(err))
			}

			app, err := bootstrap.New(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Usecases.Auth.RegisterAdmin(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Created admin %s (%s)\n", user.FullName, user.ID)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Admin email")
	createCmd.Flags().String("password", "", "Admin password")
	createCmd.Flags().String("name", "", "Admin full name")
	cmd.AddCommand(createCmd)

	return cmd
}
