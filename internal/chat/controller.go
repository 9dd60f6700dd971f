package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// State is the controller's position in the send cycle.
type State int

const (
	// StateIdle accepts a new exchange.
	StateIdle State = iota
	// StateAwaiting has one exchange in flight.
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Exchange is one started send: the captured input and the session it
// belongs to. It is handed back to Complete once the request resolves.
type Exchange struct {
	Message   string
	SessionID string
	seq       uint64
}

// Request builds the wire body for the exchange.
func (e Exchange) Request() Request {
	return Request{Message: e.Message, SessionID: e.SessionID}
}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithIDSource replaces the session identifier generator.
func WithIDSource(src IDSource) Option {
	return func(c *Controller) {
		if src != nil {
			c.newID = src
		}
	}
}

// WithLogger sets the logger used for exchange events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithGreeting overrides the seed bot message; blank text is ignored.
func WithGreeting(text string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(text) != "" {
			c.greeting = text
		}
	}
}

// Controller owns one conversation: the message log, the pending input, the
// in-flight flag, the last error and the session identifier.
//
// A Controller is not safe for concurrent use. It is meant to be driven from
// a single event loop; only the network call of an exchange may run
// elsewhere, between Begin and Complete.
type Controller struct {
	client   Client
	log      *zap.Logger
	newID    IDSource
	greeting string

	sessionID string
	messages  []Message
	input     string
	inflight  bool
	lastErr   string
	seq       uint64
}

// NewController seeds the log with the greeting and draws a fresh session
// identifier. The controller starts idle.
func NewController(client Client, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		log:      zap.NewNop(),
		newID:    UUIDSource,
		greeting: Greeting,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sessionID = c.newID()
	c.messages = []Message{{Sender: SenderBot, Text: c.greeting}}
	c.log = c.log.With(zap.String("session_id", c.sessionID))
	return c
}

// SessionID, Input, InFlight, LastError and Len report current state
// without changing it.
func (c *Controller) SessionID() string { return c.sessionID }
func (c *Controller) Input() string     { return c.input }
func (c *Controller) InFlight() bool    { return c.inflight }
func (c *Controller) LastError() string { return c.lastErr }
func (c *Controller) Len() int          { return len(c.messages) }

// State reports Idle or Awaiting.
func (c *Controller) State() State {
	if c.inflight {
		return StateAwaiting
	}
	return StateIdle
}

// Messages returns a copy of the log in display order.
func (c *Controller) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// UpdateInput replaces the pending input. It is allowed in any state.
func (c *Controller) UpdateInput(text string) {
	c.input = text
}

// CanSend reports whether Begin would start an exchange.
func (c *Controller) CanSend() bool {
	return !c.inflight && strings.TrimSpace(c.input) != ""
}

// Begin starts an exchange from the pending input. It is a no-op returning
// false when the input is blank or another exchange is in flight.
func (c *Controller) Begin() (Exchange, bool) {
	if !c.CanSend() {
		return Exchange{}, false
	}
	c.messages = append(c.messages, Message{Sender: SenderUser, Text: c.input})
	c.inflight = true
	c.lastErr = ""
	c.seq++
	ex := Exchange{Message: c.input, SessionID: c.sessionID, seq: c.seq}
	c.input = ""
	c.log.Debug("exchange started", zap.Uint64("seq", ex.seq), zap.Int("chars", len(ex.Message)))
	return ex, true
}

// Complete resolves the in-flight exchange with the service outcome. Results
// for any other exchange are dropped.
func (c *Controller) Complete(ex Exchange, reply Reply, err error) {
	if !c.inflight || ex.seq != c.seq {
		c.log.Warn("dropping result for stale exchange", zap.Uint64("seq", ex.seq), zap.Uint64("current", c.seq))
		return
	}
	if err != nil {
		c.messages = append(c.messages, Message{Sender: SenderBot, Text: Apology})
		c.lastErr = ErrorPrefix + err.Error()
		c.log.Warn("exchange failed",
			zap.Uint64("seq", ex.seq),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
		)
	} else {
		c.messages = append(c.messages, Message{Sender: SenderBot, Text: reply.Text, Source: reply.Source})
		c.log.Debug("exchange finished", zap.Uint64("seq", ex.seq), zap.Int("chars", len(reply.Text)))
	}
	c.inflight = false
}

// Send runs a whole exchange synchronously. It reports whether an exchange
// was started; request failures end up in the log and LastError, never in
// the return value.
func (c *Controller) Send(ctx context.Context) bool {
	ex, ok := c.Begin()
	if !ok {
		return false
	}
	reply, err := c.client.Chat(ctx, ex.Request())
	c.Complete(ex, reply, err)
	return true
}

// Do performs the network half of an exchange without touching controller
// state, so it can run off the event loop.
func (c *Controller) Do(ctx context.Context, ex Exchange) (Reply, error) {
	return c.client.Chat(ctx, ex.Request())
}
