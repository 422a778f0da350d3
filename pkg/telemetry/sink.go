package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// LogSink receives formatted operational log lines.
type LogSink interface {
	Emit(line string)
}

// SinkFunc adapts a function to LogSink.
type SinkFunc func(line string)

// Emit calls f(line).
func (f SinkFunc) Emit(line string) { f(line) }

// WriterSink writes one line per Emit through a message-only zerolog
// console writer.
type WriterSink struct {
	zlog zerolog.Logger
}

// NewWriterSink creates a sink writing to w. A nil w writes to stdout.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = os.Stdout
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.MessageFieldName},
	}
	return &WriterSink{zlog: zerolog.New(out)}
}

// Emit writes line.
func (s *WriterSink) Emit(line string) {
	s.zlog.Log().Msg(line)
}
