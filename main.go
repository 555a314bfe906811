package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-lending/config"
	"library-lending/console"
	"library-lending/library"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		loanDays  int
		noSeed    bool
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:          "lending",
		Short:        "In-memory lending registry for books and magazines",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("loan-days") {
				cfg.LoanDays = loanDays
			}
			if flags.Changed("no-seed") {
				cfg.Seed = !noSeed
			}
			if flags.Changed("log-level") {
				if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = strings.ToLower(strings.TrimSpace(logFormat))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&loanDays, "loan-days", 7, "days until a borrowed item is due")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with an empty catalog and no users")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func run(cfg *config.Config, in *os.File, out, errOut io.Writer) error {
	logger := newLogger(cfg, errOut)

	session, err := library.NewSession(
		library.WithLogger(logger),
		library.WithNotifier(library.WriterNotifier{W: out}),
		library.WithLedgerOptions(library.WithLoanPeriod(time.Duration(cfg.LoanDays)*24*time.Hour)),
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	if cfg.Seed {
		if err := session.Seed(); err != nil {
			return err
		}
	}

	c := console.New(in, out, session)
	c.Interactive = term.IsTerminal(int(in.Fd()))
	return c.Run()
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
