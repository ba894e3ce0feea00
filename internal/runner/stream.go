package runner

import (
	"io"

	"github.com/dotabuff/manta"

	"github.com/DegaZZZ/hazetick/internal/visitor"
)

// EntityFunc receives every decoded entity update together with the tick it
// was decoded on.
type EntityFunc func(tick int32, delta visitor.Delta, e visitor.Entity) error

// Stream is the part of a replay parsing library the runner drives. Start
// blocks until the replay ends, Stop is called or a handler fails.
type Stream interface {
	OnEntity(fn EntityFunc)
	Start() error
	Stop()
}

type mantaStream struct {
	parser *manta.Parser
}

// NewMantaStream builds a Stream on a manta parser reading r from the start of
// the demo file.
func NewMantaStream(r io.Reader) (Stream, error) {
	p, err := manta.NewStreamParser(r)
	if err != nil {
		return nil, err
	}
	return &mantaStream{parser: p}, nil
}

func (s *mantaStream) OnEntity(fn EntityFunc) {
	s.parser.OnEntity(func(e *manta.Entity, op manta.EntityOp) error {
		return fn(int32(s.parser.Tick), op, e)
	})
}

func (s *mantaStream) Start() error { return s.parser.Start() }

func (s *mantaStream) Stop() { s.parser.Stop() }
