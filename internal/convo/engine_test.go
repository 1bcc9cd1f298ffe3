package convo

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordFunc func(ctx context.Context, s *Session) error

func (f recordFunc) Record(ctx context.Context, s *Session) error { return f(ctx, s) }

func captureRecorder(values *map[string]any) Recorder {
	return recordFunc(func(_ context.Context, s *Session) error {
		*values = s.Values()
		return nil
	})
}

var fixedTime = time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestEngine(t *testing.T, values *map[string]any) (*Engine, *Manager) {
	t.Helper()
	chain := NewExpenseChain()
	return NewEngine(chain, captureRecorder(values)), NewManager(chain)
}

func progress(t *testing.T, e *Engine, s *Session, raw string) Step {
	t.Helper()
	step, err := e.Progress(context.Background(), s, raw, true)
	if err != nil {
		t.Fatalf("Progress(%q) error: %v", raw, err)
	}
	return step
}

func TestManualFlowCompletes(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)

	step := eng.StartManual(s)
	if step.Outcome != OutcomePrompt || step.Await != KindImage {
		t.Fatalf("StartManual step = %+v", step)
	}

	// Typed date instead of a receipt image.
	step = progress(t, eng, s, "2301021504")
	if step.Await != KindText {
		t.Fatalf("after date, await = %v, want text", step.Await)
	}

	progress(t, eng, s, "Lunch")
	progress(t, eng, s, "10.50")
	progress(t, eng, s, "Canteen")
	progress(t, eng, s, "City Mall")
	progress(t, eng, s, "Food")

	step = progress(t, eng, s, "Credit")
	if step.Await != KindBoolean || step.Keyboard != KeyboardVerified {
		t.Fatalf("after Credit, step = %+v, want verified prompt", step)
	}

	step = progress(t, eng, s, "Yes")
	if step.Outcome != OutcomeCompleted {
		t.Fatalf("final outcome = %v, want Completed", step.Outcome)
	}

	if got == nil {
		t.Fatal("recorder was not called")
	}
	if got[SlotDatetime] != "2023-01-02 15:04:00" {
		t.Errorf("datetime = %v", got[SlotDatetime])
	}
	if got[SlotAmount] != int64(1050) {
		t.Errorf("amount = %v, want 1050", got[SlotAmount])
	}
	if got[SlotVerified] != true {
		t.Errorf("verified = %v, want true", got[SlotVerified])
	}
	if got[SlotOwner] != int64(7) || got[SlotCorrelationID] != int64(42) {
		t.Errorf("seeded values = %v, %v", got[SlotOwner], got[SlotCorrelationID])
	}
}

func TestManualPaymentAutoVerifies(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)

	if _, err := eng.AutoDate(context.Background(), s, fixedTime); err != nil {
		t.Fatalf("AutoDate error: %v", err)
	}
	progress(t, eng, s, "Lunch")
	progress(t, eng, s, "10.50")
	progress(t, eng, s, "Canteen")
	progress(t, eng, s, "City Mall")
	progress(t, eng, s, "Food")

	// PayPal fills the verified slot automatically, so the flow completes
	// without the verified prompt.
	step := progress(t, eng, s, "PayPal")
	if step.Outcome != OutcomeCompleted {
		t.Fatalf("outcome after PayPal = %v, want Completed", step.Outcome)
	}
	if got[SlotVerified] != false {
		t.Errorf("verified = %v, want false", got[SlotVerified])
	}
}

func TestManualCompleteRequiresMinimumData(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)

	step, err := eng.Complete(context.Background(), s)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if step.Outcome != OutcomeInsufficient {
		t.Fatalf("outcome = %v, want Insufficient", step.Outcome)
	}
	if got != nil {
		t.Fatal("recorder called despite insufficient data")
	}
}

func TestManualCompleteEarly(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)

	if _, err := eng.AutoDate(context.Background(), s, fixedTime); err != nil {
		t.Fatalf("AutoDate error: %v", err)
	}
	progress(t, eng, s, "Lunch")
	progress(t, eng, s, "10.50")

	// Date, description and amount are collected; /complete may now persist.
	step, err := eng.Complete(context.Background(), s)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if step.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v, want Completed", step.Outcome)
	}
	if got[SlotShop] != nil {
		t.Errorf("unexpected shop value %v", got[SlotShop])
	}
}

func TestProgressRetriesInvalidInput(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)

	if _, err := eng.AutoDate(context.Background(), s, fixedTime); err != nil {
		t.Fatalf("AutoDate error: %v", err)
	}
	progress(t, eng, s, "Lunch")

	step := progress(t, eng, s, "abc")
	if step.Outcome != OutcomeRetry || step.Await != KindAmount {
		t.Fatalf("invalid amount step = %+v, want amount retry", step)
	}
	if s.Satisfied(SlotAmount) {
		t.Fatal("invalid input was stored")
	}

	step = progress(t, eng, s, "10.50")
	if step.Outcome != OutcomePrompt {
		t.Fatalf("valid retry step = %+v", step)
	}
}

func TestSimpleFlowCompletes(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 43, FlowSimple)

	step, err := eng.StartSimple(context.Background(), s, "/simple\nLunch\n10.50\nCanteen", fixedTime)
	if err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	if step.Outcome != OutcomePrompt || step.Await != KindPayment {
		t.Fatalf("StartSimple step = %+v, want payment prompt", step)
	}

	step = progress(t, eng, s, "PayLah")
	if step.Outcome != OutcomePrompt || step.Await != KindImage || step.Keyboard != KeyboardSkip {
		t.Fatalf("after PayLah, step = %+v, want image request", step)
	}

	step, err = eng.SkipImage(context.Background(), s)
	if err != nil {
		t.Fatalf("SkipImage error: %v", err)
	}
	if step.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v, want Completed", step.Outcome)
	}

	if got[SlotDatetime] != "2023-01-02 15:04:05" {
		t.Errorf("datetime = %v", got[SlotDatetime])
	}
	if got[SlotAmount] != int64(1050) {
		t.Errorf("amount = %v, want 1050", got[SlotAmount])
	}
	if got[SlotShop] != "Canteen" || got[SlotLocation] != "" || got[SlotPurpose] != "" {
		t.Errorf("optional fields = %v, %v, %v", got[SlotShop], got[SlotLocation], got[SlotPurpose])
	}
	if got[SlotVerified] != false {
		t.Errorf("verified = %v, want false", got[SlotVerified])
	}
}

func TestSimpleFlowInvalidLineRestarts(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 43, FlowSimple)

	step, err := eng.StartSimple(context.Background(), s, "/simple\nLunch\nabc", fixedTime)
	if err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	if step.Outcome != OutcomeRestart {
		t.Fatalf("outcome = %v, want Restart", step.Outcome)
	}
}

func TestSimpleFlowTruncatesExtraLines(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 43, FlowSimple)

	body := "/simple\nA\n1\nB\nC\nD\nE\nF"
	if _, err := eng.StartSimple(context.Background(), s, body, fixedTime); err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	if v, _ := s.Value(SlotPurpose); v != "D" {
		t.Errorf("purpose = %v, want D", v)
	}
	if s.Satisfied(SlotPayment) {
		t.Error("extra lines spilled into the payment slot")
	}
}

func TestReceiveImageInManualFlow(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)

	step, err := eng.ReceiveImage(context.Background(), s)
	if err != nil {
		t.Fatalf("ReceiveImage error: %v", err)
	}
	if step.Outcome != OutcomePrompt || step.Await != KindDate {
		t.Fatalf("after image, step = %+v, want date prompt", step)
	}
}

func TestReceiveImageCompletesSimpleFlow(t *testing.T) {
	var got map[string]any
	eng, m := newTestEngine(t, &got)
	s := m.Start(7, 43, FlowSimple)

	if _, err := eng.StartSimple(context.Background(), s, "/simple\nLunch\n10.50", fixedTime); err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	progress(t, eng, s, "Debit")

	step, err := eng.ReceiveImage(context.Background(), s)
	if err != nil {
		t.Fatalf("ReceiveImage error: %v", err)
	}
	if step.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %v, want Completed", step.Outcome)
	}
}

func TestReprompt(t *testing.T) {
	chain := NewExpenseChain()
	eng := NewEngine(chain, recordFunc(func(context.Context, *Session) error { return nil }))
	m := NewManager(chain)

	s := m.Start(7, 42, FlowManual)
	eng.StartManual(s)
	step := eng.Reprompt(s)
	if step.Outcome != OutcomeRetry || step.Await != KindImage || step.Prompt == "" {
		t.Fatalf("manual reprompt = %+v", step)
	}

	s2 := m.Start(8, 43, FlowSimple)
	if _, err := eng.StartSimple(context.Background(), s2, "/simple\nLunch\n10.50", fixedTime); err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	step = eng.Reprompt(s2)
	if step.Await != KindPayment || step.Keyboard != KeyboardPayment {
		t.Fatalf("payment reprompt = %+v", step)
	}
}

func TestRecorderErrorPropagates(t *testing.T) {
	chain := NewExpenseChain()
	sentinel := errors.New("db down")
	eng := NewEngine(chain, recordFunc(func(context.Context, *Session) error { return sentinel }))
	m := NewManager(chain)

	s := m.Start(7, 43, FlowSimple)
	if _, err := eng.StartSimple(context.Background(), s, "/simple\nLunch\n10.50", fixedTime); err != nil {
		t.Fatalf("StartSimple error: %v", err)
	}
	progress(t, eng, s, "Credit")
	progress(t, eng, s, "Yes")

	if _, err := eng.SkipImage(context.Background(), s); !errors.Is(err, sentinel) {
		t.Fatalf("SkipImage err = %v, want wrapped sentinel", err)
	}
}
