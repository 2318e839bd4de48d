package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrsurvey/qrs-api/internal/domain/auth"
	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/pkg/database"
	"github.com/qrsurvey/qrs-api/internal/pkg/jwt"
)

// userCreator is the part of auth.Service the user commands need.
type userCreator interface {
	CreateUser(ctx context.Context, req *auth.CreateUserRequest) (*auth.User, error)
}

// newUserService is replaced in tests.
var newUserService = func() (userCreator, func(), error) {
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	svc := auth.NewService(auth.NewRepository(db), nil, jwt.NewService(cfg.JWTSecret, cfg.JWTSessionTTL), auth.NewRevocations(nil))
	svc.SetCustomers(customer.NewService(customer.NewRepository(db), svc))
	return svc, func() { database.ClosePostgres(db) }, nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage auth users.",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		email      string
		pw         string
		superAdmin bool
		customerID string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a super admin or a store login.",
		Example: `  qrs-admin user create --email admin@example.com --password secret1 --super-admin
  qrs-admin user create --email owner@cafe.com --password secret1 --customer-id 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := newUserService()
			if err != nil {
				return err
			}
			defer closeFn()

			req := &auth.CreateUserRequest{Email: email, Password: pw, IsSuperAdmin: superAdmin}
			if customerID != "" {
				req.CustomerID = &customerID
			}
			u, err := svc.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&pw, "password", "", "initial password")
	cmd.Flags().BoolVar(&superAdmin, "super-admin", false, "grant admin console access")
	cmd.Flags().StringVar(&customerID, "customer-id", "", "customer the store login belongs to")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
