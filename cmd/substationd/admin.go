package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/db"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

type adminFlags struct {
	phone     string
	password  string
	firstName string
	lastName  string
}

func newCreateAdminCmd() *cobra.Command {
	var f adminFlags
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `create-admin inserts an active engineer with administrator rights.
Admins are never created through the public registration endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateAdmin(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number used to log in, e.g. +380501234567")
	cmd.Flags().StringVar(&f.password, "password", "", "initial password")
	cmd.Flags().StringVar(&f.firstName, "first", "", "first name")
	cmd.Flags().StringVar(&f.lastName, "last", "", "last name")
	for _, name := range []string{"phone", "password", "first", "last"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runCreateAdmin(ctx context.Context, f adminFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := auth.CheckNewPassword(f.password, f.password); err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	hash, err := auth.NewPasswordManager(nil).HashPassword(f.password)
	if err != nil {
		return err
	}

	e := &model.Employee{
		Phone:        f.phone,
		FirstName:    f.firstName,
		LastName:     f.lastName,
		Role:         model.RoleEngineer,
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := store.NewGormStore(gormDB, log).CreateEmployee(ctx, e); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.WithField("employee_id", e.ID).Info("Administrator created")
	return nil
}
