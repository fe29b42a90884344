package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radarhq/compass/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.Config{
				Addr:       viper.GetString("addr"),
				DSN:        viper.GetString("dsn"),
				SigningKey: viper.GetString("signing_key"),
				TokenTTL:   viper.GetDuration("token_ttl"),
				Issuer:     viper.GetString("issuer"),
			}

			srv, err := server.New(cfg, server.WithLogger(cliLogger()))
			if err != nil {
				return err
			}

			if admin := viper.GetString("admin_user"); admin != "" {
				err := server.SeedAdmin(cmd.Context(), srv.DB(),
					admin,
					viper.GetString("admin_email"),
					viper.GetString("admin_password"),
				)
				if err != nil {
					return err
				}
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errc:
				return err
			case <-stop:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("dsn", "file:compass.db", "sqlite data source")
	cmd.Flags().String("signing-key", "", "JWT signing key (min 16 bytes)")
	cmd.Flags().Duration("token-ttl", 72*time.Hour, "token validity")
	cmd.Flags().String("issuer", "compass", "token issuer")
	cmd.Flags().String("admin-user", "", "seed a superuser with this username")
	cmd.Flags().String("admin-email", "", "email for the seeded superuser")
	cmd.Flags().String("admin-password", "", "password for the seeded superuser")

	viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	viper.BindPFlag("dsn", cmd.Flags().Lookup("dsn"))
	viper.BindPFlag("signing_key", cmd.Flags().Lookup("signing-key"))
	viper.BindPFlag("token_ttl", cmd.Flags().Lookup("token-ttl"))
	viper.BindPFlag("issuer", cmd.Flags().Lookup("issuer"))
	viper.BindPFlag("admin_user", cmd.Flags().Lookup("admin-user"))
	viper.BindPFlag("admin_email", cmd.Flags().Lookup("admin-email"))
	viper.BindPFlag("admin_password", cmd.Flags().Lookup("admin-password"))

	return cmd
}
