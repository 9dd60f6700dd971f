package chat

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply    Reply
	err      error
	requests []Request
}

func (s *stubClient) Chat(_ context.Context, req Request) (Reply, error) {
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

func fixedID(id string) IDSource {
	return func() string { return id }
}

func TestNewControllerSeedsGreeting(t *testing.T) {
	c := NewController(&stubClient{})

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderBot, msgs[0].Sender)
	assert.Equal(t, Greeting, msgs[0].Text)
	assert.False(t, c.InFlight())
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.LastError())
	assert.Empty(t, c.Input())
	assert.NotEmpty(t, c.SessionID())
}

func TestNewControllerSessionIDsDiffer(t *testing.T) {
	a := NewController(&stubClient{})
	b := NewController(&stubClient{})
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestSendBlankInputIsNoop(t *testing.T) {
	for _, input := range []string{"", " ", "\t", "\n  \r\n"} {
		client := &stubClient{reply: Reply{Text: "unused"}}
		c := NewController(client)
		c.UpdateInput(input)

		assert.False(t, c.Send(context.Background()), "input %q", input)
		assert.Equal(t, 1, c.Len(), "input %q", input)
		assert.False(t, c.InFlight(), "input %q", input)
		assert.Empty(t, client.requests, "input %q", input)
		assert.Equal(t, input, c.Input(), "blank input is left in place")
	}
}

func TestSendSuccessRoundTrip(t *testing.T) {
	client := &stubClient{reply: Reply{Text: "hi there"}}
	c := NewController(client, WithIDSource(fixedID("session-1")))
	c.UpdateInput("hello")

	require.True(t, c.Send(context.Background()))

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Sender: SenderUser, Text: "hello"}, msgs[1])
	assert.Equal(t, Message{Sender: SenderBot, Text: "hi there"}, msgs[2])
	assert.False(t, c.InFlight())
	assert.Empty(t, c.LastError())
	assert.Empty(t, c.Input())
	require.Len(t, client.requests, 1)
	assert.Equal(t, Request{Message: "hello", SessionID: "session-1"}, client.requests[0])
}

func TestSendKeepsUntrimmedText(t *testing.T) {
	client := &stubClient{reply: Reply{Text: "ok"}}
	c := NewController(client)
	c.UpdateInput("  padded  ")

	require.True(t, c.Send(context.Background()))
	assert.Equal(t, "  padded  ", c.Messages()[1].Text)
	assert.Equal(t, "  padded  ", client.requests[0].Message)
}

func TestSendFailureAppendsApology(t *testing.T) {
	client := &stubClient{err: &ServiceError{StatusCode: http.StatusInternalServerError, Detail: "boom"}}
	c := NewController(client)
	c.UpdateInput("hello")

	require.True(t, c.Send(context.Background()))

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Sender: SenderUser, Text: "hello"}, msgs[1])
	assert.Equal(t, Message{Sender: SenderBot, Text: Apology}, msgs[2])
	assert.False(t, c.InFlight())
	assert.Contains(t, c.LastError(), ErrorPrefix)
	assert.Contains(t, c.LastError(), "http 500")
}

func TestSendClearsLastErrorOnNextAttempt(t *testing.T) {
	client := &stubClient{err: &TransportError{Op: "POST /chat", Err: errors.New("connection refused")}}
	c := NewController(client)
	c.UpdateInput("first")
	c.Send(context.Background())
	require.NotEmpty(t, c.LastError())

	c.UpdateInput("second")
	ex, ok := c.Begin()
	require.True(t, ok)
	assert.Empty(t, c.LastError())

	c.Complete(ex, Reply{Text: "back"}, nil)
	assert.Empty(t, c.LastError())
	assert.Equal(t, "back", c.Messages()[c.Len()-1].Text)
}

func TestBeginIsSingleFlight(t *testing.T) {
	c := NewController(&stubClient{})
	c.UpdateInput("one")
	ex, ok := c.Begin()
	require.True(t, ok)
	assert.Equal(t, StateAwaiting, c.State())
	assert.Equal(t, "one", ex.Message)
	assert.Empty(t, c.Input())

	for i := 0; i < 5; i++ {
		c.UpdateInput("again")
		_, ok := c.Begin()
		assert.False(t, ok)
	}
	assert.Equal(t, 2, c.Len(), "only the first user message is logged")
	assert.Equal(t, "again", c.Input(), "input edits stay allowed while awaiting")

	c.Complete(ex, Reply{Text: "done"}, nil)
	assert.Equal(t, StateIdle, c.State())
	_, ok = c.Begin()
	assert.True(t, ok)
}

func TestSendWhileAwaitingIssuesNoRequest(t *testing.T) {
	client := &stubClient{reply: Reply{Text: "late"}}
	c := NewController(client)
	c.UpdateInput("one")
	ex, ok := c.Begin()
	require.True(t, ok)

	c.UpdateInput("two")
	assert.False(t, c.Send(context.Background()))
	assert.Empty(t, client.requests)

	c.Complete(ex, Reply{Text: "first reply"}, nil)
	assert.Equal(t, 3, c.Len())
}

func TestCompleteIgnoresStaleExchange(t *testing.T) {
	c := NewController(&stubClient{})
	c.UpdateInput("one")
	first, _ := c.Begin()
	c.Complete(first, Reply{Text: "reply one"}, nil)

	c.Complete(first, Reply{Text: "duplicate"}, nil)
	assert.Equal(t, 3, c.Len())

	c.UpdateInput("two")
	second, _ := c.Begin()
	c.Complete(first, Reply{Text: "stale"}, nil)
	assert.True(t, c.InFlight())
	assert.Equal(t, 4, c.Len())

	c.Complete(second, Reply{Text: "reply two"}, nil)
	assert.Equal(t, "reply two", c.Messages()[4].Text)
}

func TestSessionIDStableAcrossSends(t *testing.T) {
	client := &stubClient{reply: Reply{Text: "ok"}}
	c := NewController(client)
	c.UpdateInput("a")
	c.Send(context.Background())
	c.UpdateInput("b")
	c.Send(context.Background())

	require.Len(t, client.requests, 2)
	assert.Equal(t, client.requests[0].SessionID, client.requests[1].SessionID)
	assert.Equal(t, c.SessionID(), client.requests[0].SessionID)
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := NewController(&stubClient{})
	msgs := c.Messages()
	msgs[0].Text = "tampered"
	assert.Equal(t, Greeting, c.Messages()[0].Text)
}

func TestReplySourceIsKept(t *testing.T) {
	src := Source{URL: "https://example.com/doc", DocumentName: "handbook.pdf"}
	c := NewController(&stubClient{reply: Reply{Text: "see the handbook", Source: src}})
	c.UpdateInput("where?")
	c.Send(context.Background())

	last := c.Messages()[2]
	assert.Equal(t, src, last.Source)
	assert.Equal(t, "handbook.pdf (https://example.com/doc)", last.Source.String())
}

func TestWithGreeting(t *testing.T) {
	c := NewController(&stubClient{}, WithGreeting("Welcome back."))
	assert.Equal(t, "Welcome back.", c.Messages()[0].Text)

	c = NewController(&stubClient{}, WithGreeting("   "))
	assert.Equal(t, Greeting, c.Messages()[0].Text)
}
