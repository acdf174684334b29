// Package cli implements the ratfit command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
	"github.com/YuminosukeSato/ratfit/pkg/log"
)

// EnvPrefix prefixes environment overrides, e.g. RATFIT_MAXITER=50.
const EnvPrefix = "RATFIT"

// app carries the state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  log.Logger
}

// NewRootCommand builds the ratfit command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ratfit",
		Short: "Rational approximation by Sanathanan-Koerner iteration",
		Long: `ratfit fits rational functions p(x)/q(x) to sampled data.

Settings are read from flags, RATFIT_* environment variables and a YAML
config file (default $HOME/.ratfit.yaml), in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.setupLogging(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.ratfit.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")

	rootCmd.AddCommand(newFitCommand(a), newEvalCommand(a), newPolesCommand(a))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "find home directory")
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".ratfit")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && a.cfgFile == "" {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

func (a *app) setupLogging(w io.Writer) error {
	level := a.v.GetString("log-level")
	switch a.v.GetString("log-format") {
	case "json":
		if err := log.SetupLogger(w, level); err != nil {
			return err
		}
	case "console", "":
		lvl, err := log.ToLogLevel(level)
		if err != nil {
			return err
		}
		root := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).With().Timestamp().Logger()
		provider := log.NewZerologProvider(root)
		provider.SetLevel(log.Level(lvl))
		log.SetProvider(provider)
		log.NewZerologLogger(root).InstallWarnings()
	default:
		return errors.NewValidationError("log-format", "must be console or json", a.v.GetString("log-format"))
	}
	a.logger = log.GetLoggerWithName("cli")
	if f := a.v.ConfigFileUsed(); f != "" {
		a.logger.Debug("using config file", "file", f)
	}
	return nil
}
