package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/middleware"
)

const defaultTokenTTL = 24 * time.Hour

// newTokenCmd выпускает токен для POST /brew/admin/snapshots.
func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить JWT администратора",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.AdminJWTSecret == "" {
				return fmt.Errorf("не задан %s: %w", config.EnvAdminJWTSecret, middleware.ErrEmptySecret)
			}
			if subject == "" {
				return errors.New("не указан --subject")
			}
			if ttl <= 0 {
				return errors.New("--ttl должен быть положительным")
			}

			token, err := middleware.IssueAdminToken([]byte(a.cfg.AdminJWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Субъект токена (кто публикует снимки)")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "Срок действия токена")
	return cmd
}
