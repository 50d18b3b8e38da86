package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"librarydesk/app"
	"librarydesk/config"
	"librarydesk/db"
	"librarydesk/models"
	"librarydesk/routes"
	"librarydesk/session"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			application := app.MustNew(config.Load())
			defer application.Close()

			routes.RegisterRoutes(application.Router, application)

			srv := &http.Server{
				Addr:              ":" + application.Config.Port,
				Handler:           application.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()

			application.Log.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.Load()
			conn, err := db.Open(cfg.Database, app.NewLogger(os.Stderr, cfg.LogLevel))
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var staff bool
	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create a librarian account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.Load()
			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			hash, err := app.HashPassword(password)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database, app.NewLogger(os.Stderr, cfg.LogLevel))
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}

			u := &models.User{Username: strings.TrimSpace(args[0]), PasswordHash: hash, IsStaff: staff}
			if err := db.NewRepo(conn).CreateUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&staff, "staff", false, "allow access to the staff dashboard")
	return cmd
}

func setPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username>",
		Short: "Change a password and sign the user out everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.Load()
			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			hash, err := app.HashPassword(password)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database, app.NewLogger(os.Stderr, cfg.LogLevel))
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}

			u, err := db.NewRepo(conn).SetUserPassword(cmd.Context(), strings.TrimSpace(args[0]), hash)
			if err != nil {
				return err
			}

			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd})
			defer rdb.Close()
			if err := revokeSessions(cmd.Context(), rdb, cfg, u.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "password changed, but sessions were not revoked: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", u.Username)
			return nil
		},
	}
}

func staffCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "staff <username>",
		Short: "Grant or revoke staff dashboard access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.Load()
			conn, err := db.Open(cfg.Database, app.NewLogger(os.Stderr, cfg.LogLevel))
			if err != nil {
				return err
			}
			if sqlDB, err := conn.DB(); err == nil {
				defer sqlDB.Close()
			}
			return setStaff(cmd, db.NewRepo(conn), strings.TrimSpace(args[0]), !revoke)
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove staff access instead of granting it")
	return cmd
}

var errLastStaff = errors.New("cannot revoke the last staff account")

func setStaff(cmd *cobra.Command, repo *db.Repo, username string, isStaff bool) error {
	ctx := cmd.Context()
	if !isStaff {
		u, err := repo.FindUserByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("%s: %w", username, err)
		}
		n, err := repo.CountStaff(ctx)
		if err != nil {
			return err
		}
		if u.IsStaff && n <= 1 {
			return errLastStaff
		}
	}
	if err := repo.SetUserStaff(ctx, username, isStaff); err != nil {
		return fmt.Errorf("%s: %w", username, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s staff=%t\n", username, isStaff)
	return nil
}

func revokeSessions(ctx context.Context, rdb *redis.Client, cfg config.Config, userID string) error {
	return session.NewAppSessionStore(rdb, cfg.SessionTTL).RevokeAllForUser(ctx, userID)
}

var errPasswordMismatch = errors.New("passwords do not match")

// promptNewPassword reads a password twice without echo.
func promptNewPassword() (string, error) {
	first, err := readPassword("Password: ")
	if err != nil {
		return "", err
	}
	if len(first) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	second, err := readPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

// readTerminal reads one line from the terminal without echo.
var readTerminal = func() ([]byte, error) { return term.ReadPassword(int(syscall.Stdin)) }

// readPassword keeps the password byte for byte; login compares it untrimmed.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := readTerminal()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
