package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/todoui/internal/config"
	"github.com/vango-dev/todoui/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "todoui",
		Short: "Interaction engine for server-rendered todo pages",
		Long: `todoui validates forms, shows notifications, gates submissions and
animates server-rendered todo pages.

Commands:
  serve      Run pages live over WebSocket
  simulate   Replay scripted interactions against page fixtures
  config     Print the effective configuration
  version    Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
				colorOutput = false
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Config file (default ./todoui.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(flags),
		simulateCmd(flags),
		configCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration, mapping failures to coded errors.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrInvalid) {
		return nil, errors.New("T020").Wrap(err)
	}
	e := errors.New("T021").Wrap(err)
	if flags.configFile != "" {
		e.Location = &errors.Location{File: flags.configFile}
	}
	return nil, e
}

// colorOutput controls ANSI colors in status lines.
var colorOutput = true

func mark(code, symbol string) string {
	if !colorOutput {
		return symbol
	}
	return code + symbol + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// failure prints a failure message.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[31m", "✗"), fmt.Sprintf(format, args...))
}

// info prints an indented info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
