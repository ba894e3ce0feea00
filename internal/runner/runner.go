// Package runner opens a demo file, reports its length and walks it through
// the replay library, printing what the visitor sees.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/DegaZZZ/hazetick/internal/demo"
	"github.com/DegaZZZ/hazetick/internal/visitor"
)

// Mode selects how far the replay is walked.
type Mode string

const (
	ModeEnd  Mode = "end"
	ModeTick Mode = "tick"
)

// Options describes one run over a demo file.
type Options struct {
	Path string
	Mode Mode
	// TickEnd is the last tick processed in ModeTick.
	TickEnd int32
}

// Runner walks demo files and writes the tick and hero id lines to Out.
type Runner struct {
	Out       io.Writer
	Log       *log.Logger
	NewStream func(io.Reader) (Stream, error)
}

// New returns a Runner backed by the manta replay parser.
func New(out io.Writer, logger *log.Logger) *Runner {
	return &Runner{Out: out, Log: logger, NewStream: NewMantaStream}
}

// Run prints the total tick count and walks the demo per opts. Any error
// from the file or the replay library aborts the run.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	if opts.Mode != ModeEnd && opts.Mode != ModeTick {
		return fmt.Errorf("unknown mode %q", opts.Mode)
	}
	f, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("opening demo file: %w", err)
	}
	defer f.Close()

	ticks, err := demo.TotalTicks(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.Path, err)
	}
	r.logFileHeader(f, opts.Path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding %s: %w", opts.Path, err)
	}
	stream, err := r.NewStream(f)
	if err != nil {
		return fmt.Errorf("initializing replay stream: %w", err)
	}

	var tickEnd *int32
	if opts.Mode == ModeTick {
		tickEnd = &opts.TickEnd
	}
	v := visitor.New(r.Out, tickEnd)
	stream.OnEntity(func(tick int32, delta visitor.Delta, e visitor.Entity) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tickEnd != nil && tick > *tickEnd {
			stream.Stop()
			return nil
		}
		return v.OnEntity(tick, delta, e)
	})

	fmt.Fprintf(r.Out, "Total ticks: %d\n", ticks)
	if opts.Mode == ModeTick {
		fmt.Fprintf(r.Out, "Running to tick: %d\n", opts.TickEnd)
	} else {
		fmt.Fprintln(r.Out, "Running to end")
	}

	if err := stream.Start(); err != nil {
		return fmt.Errorf("parsing %s: %w", opts.Path, err)
	}
	r.Log.WithField("path", opts.Path).Debug("Parsing done")
	return nil
}

// logFileHeader reports the first frame's file header at debug level. Failures
// here are not fatal; the replay library validates the stream itself.
func (r *Runner) logFileHeader(f io.ReadSeeker, path string) {
	if !r.Log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	if _, err := f.Seek(demo.HeaderSize, io.SeekStart); err != nil {
		r.Log.WithError(err).Debug("Could not seek to file header")
		return
	}
	frame, err := demo.NewReader(f).Next()
	if err != nil {
		r.Log.WithError(err).Debug("Could not read file header frame")
		return
	}
	h, err := frame.FileHeader()
	if err != nil {
		r.Log.WithError(err).Debug("Could not decode file header")
		return
	}
	r.Log.WithFields(log.Fields{
		"path":             path,
		"map":              h.GetMapName(),
		"server":           h.GetServerName(),
		"client":           h.GetClientName(),
		"network_protocol": h.GetNetworkProtocol(),
	}).Debug("Demo file header")
}
