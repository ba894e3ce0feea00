package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DegaZZZ/hazetick/internal/logging"
	"github.com/DegaZZZ/hazetick/internal/runner"
)

const usage = "usage: hazetick <filepath> --mode <end|tick> --tick-end <tick>"

// ErrUsage marks missing or malformed command-line arguments.
var ErrUsage = errors.New("usage error")

// NewRootCommand builds the command with its own viper instance so tests can
// run it repeatedly.
func NewRootCommand() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

func newCommand() (*cobra.Command, *viper.Viper) {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hazetick <filepath>",
		Short: "Deadlock demo tick inspector",
		Long: `Walks a Deadlock demo file tick by tick and prints every processed tick
and the hero id of each player pawn update.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%s: %w", usage, ErrUsage)
			}
			if err := readConfig(v); err != nil {
				return err
			}
			opts, err := optionsFrom(v, args[0])
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), v.GetString("log-level"))
			logger.WithField("mode", opts.Mode).Debug("Starting run")
			return runner.New(cmd.OutOrStdout(), logger).Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.String("mode", "", "run to the `end` of the demo or to a specific `tick`")
	flags.String("tick-end", "", "last tick to process when --mode is tick")
	flags.String("log-level", logging.DefaultLevel.String(), "logrus level for diagnostics on stderr")
	flags.String("config", "", "optional config file providing mode, tick-end and log-level")
	bindFlags(v, flags)

	return cmd, v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func readConfig(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, NewRootCommand(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}
