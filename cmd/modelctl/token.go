package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibbank/credit-risk-service/pkg/auth"
)

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject        string
		roles          []string
		ttl            time.Duration
		privateKeyFile string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the credit risk API",
		Long: `Sign a JWT with auth.jwt_secret, or with an RSA private key when
--private-key-file is given. The issuer is auth.issuer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("ttl") && a.cfg.Auth.TokenTTL > 0 {
				ttl = a.cfg.Auth.TokenTTL
			}
			jwtCfg := auth.JWTConfig{
				Secret:     a.cfg.Auth.JWTSecret,
				Issuer:     a.cfg.Auth.Issuer,
				Expiration: ttl,
			}
			if privateKeyFile != "" {
				key, err := auth.LoadKeyFromFile(privateKeyFile)
				if err != nil {
					return err
				}
				jwtCfg.PrivateKeyPEM = string(key)
			}
			if jwtCfg.Secret == "" && jwtCfg.PrivateKeyPEM == "" {
				return errors.New("no signing key: set auth.jwt_secret or pass --private-key-file")
			}

			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, roles)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "caller identity placed in the sub claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleAPIClient}, "role to grant, repeatable")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime (default auth.token_ttl)")
	cmd.Flags().StringVar(&privateKeyFile, "private-key-file", "", "PEM encoded RSA private key")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
