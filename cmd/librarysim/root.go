package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/library-coordination-go/config"
)

// settings is shared by all subcommands and filled in PersistentPreRunE.
type settings struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	out        io.Writer
	logOut     io.Writer
}

func newRootCmd(out io.Writer, logOut io.Writer) *cobra.Command {
	s := &settings{v: viper.New(), out: out, logOut: logOut}

	cmd := &cobra.Command{
		Use:          "librarysim",
		Short:        "Simulate borrowing and returning books in a small library",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(s.v, s.configFile)
			if err != nil {
				return err
			}
			s.cfg = cfg

			return nil
		},
	}

	cmd.SetOut(out)
	cmd.SetErr(logOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.configFile, "config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("log-format", config.LogFormatText, "log format: text|json")
	flags.String("seed", "", "seed file (yaml or toml); the built-in library is used if empty")
	flags.Bool("journal", true, "record every borrow and return in the lending journal")
	flags.String("metrics", config.MetricsBackendNone, "metrics backend: none|otel|prometheus")

	bind(s.v, flags, map[string]string{
		config.KeyLogLevel:       "log-level",
		config.KeyLogFormat:      "log-format",
		config.KeySeedFile:       "seed",
		config.KeyJournalEnabled: "journal",
		config.KeyMetricsBackend: "metrics",
	})

	cmd.AddCommand(newRunCmd(s), newLoadCmd(s))

	return cmd
}

// bind makes viper honor flags. A flag only overrides config files and environment
// variables once it was set explicitly.
func bind(v *viper.Viper, flags *pflag.FlagSet, keysToFlags map[string]string) {
	for key, name := range keysToFlags {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}
