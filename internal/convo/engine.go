package convo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/expensebot/core/logger"
	"log/slog"
)

// Outcome classifies the result of a single conversation turn.
type Outcome int

const (
	// OutcomePrompt means the next prompt should be shown and a reply awaited.
	OutcomePrompt Outcome = iota
	// OutcomeRetry means the input was invalid and the same prompt repeats.
	OutcomeRetry
	// OutcomeCompleted means the record was persisted and the session is done.
	OutcomeCompleted
	// OutcomeInsufficient means completion was refused for lack of data.
	OutcomeInsufficient
	// OutcomeCancelled means the session was discarded without persisting.
	OutcomeCancelled
	// OutcomeRestart means a bulk entry failed and must be re-entered whole.
	OutcomeRestart
)

// Step is what the transport layer renders after a turn: an outcome plus the
// prompt, keyboard hint and awaited reply kind when the conversation goes on.
type Step struct {
	Outcome  Outcome
	Prompt   string
	Keyboard Keyboard
	Await    ReplyKind
}

// Recorder persists a completed session. Implementations write exactly one
// immutable record per call.
type Recorder interface {
	Record(ctx context.Context, s *Session) error
}

// Prompts that belong to the flows rather than to individual slots.
const (
	manualIntroPrompt = "Upload an image of the receipt or skip by entering a date in the format YYMMDDHHMM.\n" +
		"Automatic input can be selected using the command /date.\n" +
		"Cancel the process at any time using the command /cancel."
	imageRequestPrompt = "Upload an image of the receipt or skip by pressing the button."
)

// simpleBulkSlots is the number of lines consumed by a bulk entry, in chain
// order starting at the description slot. Extra lines are dropped.
const simpleBulkSlots = 5

// Engine advances sessions through the slot chain and hands completed ones to
// the Recorder. It holds no per-session state of its own.
type Engine struct {
	chain *Chain
	rec   Recorder
}

// NewEngine constructs an Engine over the shared chain.
func NewEngine(chain *Chain, rec Recorder) *Engine {
	return &Engine{chain: chain, rec: rec}
}

// StartManual opens the slot-by-slot flow. The first turn offers an image
// upload or a typed date, so the session awaits an image.
func (e *Engine) StartManual(s *Session) Step {
	s.Await = KindImage
	logger.Debug(logger.Background(), "engine", "engine.start",
		slog.String("flow", "manual"),
		slog.Int64("chat_id", s.Owner),
		slog.Int64("correlation_id", s.CorrelationID),
	)
	return Step{Outcome: OutcomePrompt, Prompt: manualIntroPrompt, Keyboard: KeyboardRemove, Await: KindImage}
}

// StartSimple opens the bulk flow: the timestamp is populated from the
// originating event, then every line after the command is validated into the
// chain starting at the description slot. Any invalid line aborts the entry.
func (e *Engine) StartSimple(ctx context.Context, s *Session, body string, origination time.Time) (Step, error) {
	s.Set(SlotDatetime, origination.Format(TimeFormat))

	lines := bulkLines(body)
	pos, _ := e.chain.Lookup(SlotDescription)
	for _, line := range lines {
		slot, ok := e.chain.At(pos)
		if !ok {
			break
		}
		v, err := slot.validate(line)
		if err != nil {
			logger.Debug(ctx, "engine", "engine.bulk_invalid",
				slog.Int64("chat_id", s.Owner),
				slog.String("slot", slot.Name),
			)
			return Step{Outcome: OutcomeRestart}, nil
		}
		s.Set(slot.Name, v)
		pos = e.chain.Next(pos)
	}
	s.current = pos

	logger.Debug(ctx, "engine", "engine.start",
		slog.String("flow", "simple"),
		slog.Int64("chat_id", s.Owner),
		slog.Int64("correlation_id", s.CorrelationID),
	)
	return e.Progress(ctx, s, "", false)
}

// Progress is the core transition: optionally validate and store the raw
// input for the current slot, skip every already-satisfied slot, then either
// fire the flow completion rule or emit the next prompt.
func (e *Engine) Progress(ctx context.Context, s *Session, raw string, save bool) (Step, error) {
	if save {
		slot, ok := s.CurrentSlot()
		if !ok {
			return Step{}, fmt.Errorf("progress: session points past the chain")
		}
		v, err := slot.validate(raw)
		if err != nil {
			return Step{Outcome: OutcomeRetry, Prompt: slot.Prompt, Keyboard: slot.Keyboard, Await: slot.Kind}, nil
		}
		s.Set(slot.Name, v)
		if slot.Name == SlotPayment {
			if verified, ok := autoVerified[raw]; ok {
				s.Set(SlotVerified, verified)
			}
		}
	}

	s.advance()

	if s.current == End {
		if s.Flow == FlowManual {
			return e.completeManual(ctx, s)
		}
		s.Await = KindImage
		return Step{Outcome: OutcomePrompt, Prompt: imageRequestPrompt, Keyboard: KeyboardSkip, Await: KindImage}, nil
	}

	slot, _ := s.CurrentSlot()
	s.Await = slot.Kind
	return Step{Outcome: OutcomePrompt, Prompt: slot.Prompt, Keyboard: slot.Keyboard, Await: slot.Kind}, nil
}

// Reprompt re-emits the prompt for the session's current wait state without
// advancing the conversation. Used when input arrives that the session cannot
// consume.
func (e *Engine) Reprompt(s *Session) Step {
	if s.Await == KindImage {
		if s.Flow == FlowSimple {
			return Step{Outcome: OutcomeRetry, Prompt: imageRequestPrompt, Keyboard: KeyboardSkip, Await: KindImage}
		}
		return Step{Outcome: OutcomeRetry, Prompt: manualIntroPrompt, Keyboard: KeyboardRemove, Await: KindImage}
	}
	slot, ok := s.CurrentSlot()
	if !ok {
		return Step{Outcome: OutcomeRetry}
	}
	return Step{Outcome: OutcomeRetry, Prompt: slot.Prompt, Keyboard: slot.Keyboard, Await: slot.Kind}
}

// AutoDate substitutes the originating event's own timestamp for the datetime
// slot and advances the conversation.
func (e *Engine) AutoDate(ctx context.Context, s *Session, origination time.Time) (Step, error) {
	s.Set(SlotDatetime, origination.Format(TimeFormat))
	return e.Progress(ctx, s, "", false)
}

// ReceiveImage advances after the receipt image has been stored: the manual
// flow keeps collecting, the simple flow is complete.
func (e *Engine) ReceiveImage(ctx context.Context, s *Session) (Step, error) {
	if s.Flow == FlowSimple {
		return e.complete(ctx, s)
	}
	return e.Progress(ctx, s, "", false)
}

// SkipImage completes the simple flow without a receipt image.
func (e *Engine) SkipImage(ctx context.Context, s *Session) (Step, error) {
	return e.complete(ctx, s)
}

// Complete concludes the conversation early. The manual flow enforces the
// minimum-data rule; the simple flow persists whatever was collected.
func (e *Engine) Complete(ctx context.Context, s *Session) (Step, error) {
	if s.Flow == FlowManual {
		return e.completeManual(ctx, s)
	}
	return e.complete(ctx, s)
}

// Cancel discards the conversation without persisting anything.
func (e *Engine) Cancel(s *Session) Step {
	logger.Debug(logger.Background(), "engine", "engine.cancel",
		slog.Int64("chat_id", s.Owner),
		slog.Int64("correlation_id", s.CorrelationID),
	)
	return Step{Outcome: OutcomeCancelled}
}

// completeManual refuses to persist when fewer than 5 values were collected,
// which guarantees at least three user-supplied fields beyond the seeded
// owner and correlation id.
func (e *Engine) completeManual(ctx context.Context, s *Session) (Step, error) {
	if s.Count() < 5 {
		logger.Debug(ctx, "engine", "engine.insufficient",
			slog.Int64("chat_id", s.Owner),
			slog.Int("values", s.Count()),
		)
		return Step{Outcome: OutcomeInsufficient}, nil
	}
	return e.complete(ctx, s)
}

func (e *Engine) complete(ctx context.Context, s *Session) (Step, error) {
	if err := e.rec.Record(ctx, s); err != nil {
		return Step{}, fmt.Errorf("record session %d: %w", s.CorrelationID, err)
	}
	logger.Info(ctx, "engine", "engine.complete",
		slog.Int64("chat_id", s.Owner),
		slog.Int64("correlation_id", s.CorrelationID),
		slog.Int("values", s.Count()),
	)
	return Step{Outcome: OutcomeCompleted}, nil
}

// bulkLines splits the message body after the command line and pads or
// truncates the result to exactly simpleBulkSlots entries.
func bulkLines(body string) []string {
	var lines []string
	if parts := strings.Split(body, "\n"); len(parts) > 1 {
		lines = parts[1:]
	}
	if len(lines) > simpleBulkSlots {
		lines = lines[:simpleBulkSlots]
	}
	for len(lines) < simpleBulkSlots {
		lines = append(lines, "")
	}
	return lines
}
