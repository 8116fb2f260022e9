package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/adamzambudio/rpa-lab/internal/config"
	"github.com/adamzambudio/rpa-lab/internal/logging"
	"github.com/adamzambudio/rpa-lab/internal/service"
)

type ui struct {
	title func(a ...interface{}) string
	ok    func(a ...interface{}) string
	info  func(a ...interface{}) string
	warn  func(a ...interface{}) string
	err   func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfgPath  string
	debug    bool
	logFile  string
	cfg      *config.AppConfig
	logger   *slog.Logger
	closeLog func() error
	ui       *ui
}

// exitError makes main exit with a specific code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	a := &app{ui: newUI()}

	root := &cobra.Command{
		Use:   "rpa-cli",
		Short: "RPA report pipeline",
		Long:  "rpa-cli scrapes per-city data, builds Excel reports and mails them, one client at a time.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "rpa.yaml", "config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			stylelog.InitDefault()
			return &exitError{code: service.ExitCode(err), err: err}
		}
		a.cfg = cfg

		level := logging.ParseLevel(cfg.Logging.Level)
		if a.debug {
			level = slog.LevelDebug
		}
		file := cfg.Logging.File
		if a.logFile != "" {
			file = a.logFile
		}
		logger, closeLog, err := logging.Setup(level, file)
		if err != nil {
			return err
		}
		a.logger = logger
		a.closeLog = closeLog
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if a.closeLog != nil {
			return a.closeLog()
		}
		return nil
	}

	root.AddCommand(batchCmd(a))
	root.AddCommand(runCmd(a))
	root.AddCommand(transformCmd(a))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown: the current item finishes, the rest are marked cancelled.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Warn("Received signal, cancelling...", "signal", sig)
		cancel()
	}()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code != 0 {
			fmt.Fprintln(os.Stderr, a.ui.err("[ERROR]"), ee.Error())
		}
		cancel()
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, a.ui.err("[ERROR]"), err.Error())
	cancel()
	os.Exit(1)
}
