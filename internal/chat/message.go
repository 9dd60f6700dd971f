package chat

import "strings"

const (
	// Greeting seeds every new conversation log.
	Greeting = "Hello! How can I help you today?"
	// Apology replaces the bot reply when an exchange fails.
	Apology = "Sorry, there was an error."
	// ErrorPrefix is prepended to the failure detail stored as the last error.
	ErrorPrefix = "Failed to get response from server: "
)

// Sender says who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Source is the optional citation the service attaches to a reply.
type Source struct {
	URL          string
	DocumentName string
}

// Empty reports whether neither a URL nor a document name is set.
func (s Source) Empty() bool {
	return strings.TrimSpace(s.URL) == "" && strings.TrimSpace(s.DocumentName) == ""
}

func (s Source) String() string {
	doc := strings.TrimSpace(s.DocumentName)
	url := strings.TrimSpace(s.URL)
	switch {
	case doc != "" && url != "":
		return doc + " (" + url + ")"
	case doc != "":
		return doc
	default:
		return url
	}
}

// Message is a single entry of the conversation log. Values are never
// mutated after being appended.
type Message struct {
	Sender Sender
	Text   string
	Source Source
}

// FromUser reports whether the user wrote m.
func (m Message) FromUser() bool { return m.Sender == SenderUser }
