// Package stream turns the chunked byte stream returned by the transport
// into a lazy sequence of typed progress events.
//
// Transport chunk boundaries are uncorrelated with logical event
// boundaries, so the decoder buffers the trailing partial line of every
// chunk and only parses complete, terminator-delimited lines. A line is
// an event candidate when it starts with the "data: " prefix; the
// remainder must be a JSON object in the wire vocabulary (see
// vocabulary.go). Parse failures and unmapped events are skipped with a
// diagnostic, never propagated: one bad line must not abort the rest of
// the stream.
package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/quorumlabs/quorum/internal/logging"
	"github.com/quorumlabs/quorum/internal/metrics"
	"github.com/quorumlabs/quorum/pkg/domain"
)

// Prefix marks event-bearing lines on the wire. Lines without it are
// ignored (SSE comments, keep-alive blanks).
const Prefix = "data: "

const readChunkSize = 4 * 1024

// Decoder is a pull-based, non-restartable event source. It is not safe
// for concurrent use; a single consumer calls Next until io.EOF and then
// Close. Close releases the underlying byte source and is safe to call
// on every exit path, including after a failed Next.
type Decoder struct {
	source io.ReadCloser
	logger *slog.Logger
	stats  *metrics.Metrics

	buf     []byte // undecoded carry, never contains a line terminator
	pending []domain.ProtocolEvent
	chunk   []byte
	eof     bool

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the diagnostic logger for skipped lines.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithMetrics wires decode counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Decoder) {
		d.stats = m
	}
}

// NewDecoder wraps the transport stream body.
func NewDecoder(source io.ReadCloser, opts ...Option) *Decoder {
	d := &Decoder{
		source: source,
		logger: logging.NewNop(),
		chunk:  make([]byte, readChunkSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next decoded event. It blocks on the underlying
// source until a complete event line arrives, the stream ends (io.EOF),
// or ctx is canceled. After cancellation no further events are
// delivered, but events already returned stand.
func (d *Decoder) Next(ctx context.Context) (domain.ProtocolEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.ProtocolEvent{}, err
		}
		if len(d.pending) > 0 {
			ev := d.pending[0]
			d.pending = d.pending[1:]
			return ev, nil
		}
		if d.eof {
			return domain.ProtocolEvent{}, io.EOF
		}

		n, err := d.source.Read(d.chunk)
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
			d.drainLines()
		}
		if err != nil {
			d.eof = true
			if !errors.Is(err, io.EOF) {
				// Treat an abruptly broken stream like end-of-stream once
				// buffered events are drained: the conversation keeps the
				// prefix that was processed.
				d.logger.Warn("stream read failed, treating as end of stream", "err", err)
			}
			if len(d.buf) > 0 {
				// A stream must end on a line boundary to deliver its
				// final event; an unterminated trailing line is dropped.
				d.logger.Debug("discarding unterminated trailing line", "bytes", len(d.buf))
				d.buf = nil
			}
		}
	}
}

// drainLines parses every complete line in the buffer and retains the
// trailing partial line for the next chunk.
func (d *Decoder) drainLines() {
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]

		line = bytes.TrimSuffix(line, []byte{'\r'})
		if !bytes.HasPrefix(line, []byte(Prefix)) {
			continue
		}
		payload := line[len(Prefix):]

		ev, err := decodeWireLine(payload)
		if err != nil {
			var perr *domain.ProtocolError
			if errors.As(err, &perr) {
				d.stats.EventDropped()
				d.logger.Error("dropping unmapped event", "err", err, "line", string(payload))
			} else {
				d.stats.LineSkipped()
				d.logger.Warn("skipping malformed event line", "err", err)
			}
			continue
		}
		d.stats.EventDecoded(string(ev.Kind))
		d.pending = append(d.pending, ev)
	}
}

// Close releases the underlying byte source. Idempotent.
func (d *Decoder) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.source.Close()
	})
	return d.closeErr
}
