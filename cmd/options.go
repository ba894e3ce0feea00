package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/DegaZZZ/hazetick/internal/runner"
)

func optionsFrom(v *viper.Viper, path string) (runner.Options, error) {
	opts := runner.Options{Path: path}

	mode := v.GetString("mode")
	switch runner.Mode(mode) {
	case runner.ModeEnd, runner.ModeTick:
		opts.Mode = runner.Mode(mode)
	case "":
		return opts, fmt.Errorf("--mode argument is required (use 'end' or 'tick'): %w", ErrUsage)
	default:
		return opts, fmt.Errorf("invalid --mode %q (use 'end' or 'tick'): %w", mode, ErrUsage)
	}
	if opts.Mode != runner.ModeTick {
		return opts, nil
	}

	tickEnd := v.GetString("tick-end")
	if tickEnd == "" {
		return opts, fmt.Errorf("--tick-end argument is required when using --mode tick: %w", ErrUsage)
	}
	n, err := strconv.ParseInt(tickEnd, 10, 32)
	if err != nil {
		return opts, fmt.Errorf("--tick-end value must be a valid integer: %w", err)
	}
	opts.TickEnd = int32(n)
	return opts, nil
}
