package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lolamo/lolamo/config"
	srv "github.com/lolamo/lolamo/internal/server"
)

func tokenCMD() *cobra.Command {
	var cfgPath string
	var subject string
	var token = &cobra.Command{
		Use:   "token",
		Short: "Mint a guest JWT for connecting to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if cfg.Server.JWTSecret == "" {
				return fmt.Errorf("jwt secret not configured (server.jwt_secret)")
			}
			signed, err := srv.SignJWT(subject, []byte(cfg.Server.JWTSecret), cfg.Server.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}
	token.Flags().StringVar(&subject, "subject", "guest_user", "token subject")
	token.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return token
}
