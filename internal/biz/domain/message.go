package domain

import "time"

// MsgType is the inbound message type
type MsgType string

const (
	MsgTypeText    MsgType = "text"
	MsgTypeSharing MsgType = "sharing"
	MsgTypeOther   MsgType = "other"
)

// Event is one inbound message handed to the summarizer
type Event struct {
	ID           string
	Type         MsgType
	Content      string // Text body, or the shared link for sharing messages
	Conversation Conversation
	CreateTime   time.Time
}

// IsHandled reports whether the summarizer looks at this event at all
func (e *Event) IsHandled() bool {
	return e.Type == MsgTypeText || e.Type == MsgTypeSharing
}

// ReplyType is the outbound reply type
type ReplyType string

const (
	ReplyTypeText  ReplyType = "text"
	ReplyTypeError ReplyType = "error"
)

// Reply is a message sent back to a conversation
type Reply struct {
	Type    ReplyType
	Content string
}

// NewTextReply creates a plain text reply
func NewTextReply(content string) *Reply {
	return &Reply{Type: ReplyTypeText, Content: content}
}

// NewErrorReply creates an error reply
func NewErrorReply(content string) *Reply {
	return &Reply{Type: ReplyTypeError, Content: content}
}

// IsError checks if the reply reports a failure
func (r *Reply) IsError() bool {
	return r.Type == ReplyTypeError
}

// Render formats the reply as chat text. Error replies get a marker line so
// users can tell them apart from summaries.
func (r *Reply) Render() string {
	if r.IsError() {
		return "[ERROR]\n" + r.Content
	}
	return r.Content
}
