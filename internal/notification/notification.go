package notification

import (
	"context"
	"log/slog"
	"sync"
)

const (
	// KindPanicAlert indicates a panic button event.
	KindPanicAlert = "panic_alert"
	// KindSession indicates a login/logout/session lifecycle event.
	KindSession = "session"
	// KindLocation indicates a positioning status change.
	KindLocation = "location"
	// KindError indicates a surfaced failure.
	KindError = "error"
)

// Message describes a user-facing notice.
type Message struct {
	Kind string
	Body string
}

// Notifier is the toast surface the core pushes user-facing notices into.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notices to the structured logger. The production UI
// swaps in a real toast surface; the CLI and server keep this one.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "body", message.Body)
	return nil
}

// Recorder captures every notice for inspection. Test double.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder constructs an empty recording notifier.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send appends the message to the recorded list.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
