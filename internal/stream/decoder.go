// Package stream decodes incrementally arriving assistant responses.
//
// The Decoder owns the append-only buffer for one in-flight assistant turn.
// Each inbound chunk is appended and the whole buffer is re-extracted for
// markers, since a tag can straddle any chunk boundary. Newly completed
// artifact spans are emitted exactly once, keyed on their byte offset in the
// buffer; offsets are stable because the buffer only grows.
//
// The package also contains the reader for the backend's SSE line protocol
// (see Events).
package stream

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/nimbusops/console/internal/marker"
)

// State is the decoder lifecycle state.
type State int

const (
	// StateIdle means no in-flight response.
	StateIdle State = iota
	// StateStreaming means chunks are being consumed.
	StateStreaming
	// StateFinalizing means the terminal extraction pass is running.
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ErrBusy is returned by Start when a stream is already active.
var ErrBusy = errors.New("stream already active")

// Sink receives decoded output. All methods are called from the goroutine
// driving the decoder; implementations need no locking of their own.
//
// RenderText is called after every chunk with the current residual display
// text (complete markers removed, dangling tail suppressed). Final replaces
// the incremental message with the definitive one.
type Sink interface {
	RenderText(residual string) error
	Artifact(p marker.ArtifactPayload) error
	CommandCard(c marker.CmdCard) error
	Suggestions(items []string) error
	Event(kind marker.Kind, payload string)
	Final(residual string) error
}

// Decoder is the streaming-response state machine for one chat view.
// It is not safe for concurrent use; chunk events for one stream are
// processed strictly in arrival order by a single goroutine.
type Decoder struct {
	logger  *slog.Logger
	sink    Sink
	state   State
	buf     strings.Builder
	emitted map[int]bool // artifact span start offsets already pushed
}

// NewDecoder creates an idle Decoder. logger may be nil.
func NewDecoder(sink Sink, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger:  logger,
		sink:    sink,
		state:   StateIdle,
		emitted: make(map[int]bool),
	}
}

// State returns the current lifecycle state.
func (d *Decoder) State() State { return d.state }

// Buffer returns the full accumulated text so far.
func (d *Decoder) Buffer() string { return d.buf.String() }

// Start transitions Idle → Streaming and resets the buffer.
func (d *Decoder) Start() error {
	if d.state != StateIdle {
		return ErrBusy
	}
	d.state = StateStreaming
	d.buf.Reset()
	d.emitted = make(map[int]bool)
	return nil
}

// Feed appends a chunk, re-extracts markers over the accumulated buffer,
// pushes newly completed artifacts, and re-renders the residual text.
// Chunks arriving outside the Streaming state (after an abort) are dropped.
func (d *Decoder) Feed(chunk string) error {
	if d.state != StateStreaming {
		d.logger.Debug("dropping chunk outside streaming state", "state", d.state.String())
		return nil
	}

	d.buf.WriteString(chunk)
	res := marker.Extract(d.buf.String())
	d.emitNewArtifacts(res.Spans)
	return d.sink.RenderText(res.Residual)
}

// Abort transitions Streaming → Idle immediately. The partial render stays
// on screen; later Feed calls are ignored.
func (d *Decoder) Abort() {
	if d.state == StateIdle {
		return
	}
	d.logger.Debug("stream aborted", "buffered", d.buf.Len())
	d.state = StateIdle
}

// Finalize runs the terminal extraction pass over the full buffer, delivers
// every remaining span (command cards, suggestions, stripped event kinds,
// any artifact that only became parseable at the very end), emits the final
// residual, and returns to Idle.
func (d *Decoder) Finalize() error {
	if d.state != StateStreaming {
		return nil
	}
	d.state = StateFinalizing
	defer func() { d.state = StateIdle }()

	res := marker.Extract(d.buf.String())
	d.emitNewArtifacts(res.Spans)

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, span := range res.Spans {
		switch span.Kind {
		case marker.KindCmdCard:
			if card, ok := marker.DecodeCmdCard(span.Payload, d.logger); ok {
				record(d.sink.CommandCard(card))
			}
		case marker.KindSuggestions:
			if items := marker.DecodeSuggestions(span.Payload, d.logger); len(items) > 0 {
				record(d.sink.Suggestions(items))
			}
		case marker.KindFileOpen, marker.KindChangesetID,
			marker.KindProgress, marker.KindReasoning:
			d.sink.Event(span.Kind, span.Payload)
		}
	}

	// An unclosed tag at end-of-stream stays suppressed; raw bracket
	// syntax must never reach the user.
	record(d.sink.Final(res.Residual))
	return firstErr
}

func (d *Decoder) emitNewArtifacts(spans []marker.Span) {
	for _, span := range spans {
		if span.Kind != marker.KindArtifact || d.emitted[span.Start] {
			continue
		}
		d.emitted[span.Start] = true

		p, ok := marker.DecodeArtifact(span.Payload, d.logger)
		if !ok {
			continue
		}
		if err := d.sink.Artifact(p); err != nil {
			d.logger.Warn("artifact sink failed", "id", p.ID, "error", err)
		}
	}
}
