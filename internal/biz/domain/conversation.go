package domain

// ChatType represents the chat type
type ChatType string

const (
	ChatTypeGroup  ChatType = "group"
	ChatTypeDirect ChatType = "direct"
)

// ConversationIdentity is the display-level key of a conversation: the group
// name for group chats, the nickname for direct chats.
type ConversationIdentity string

// String implements fmt.Stringer
func (id ConversationIdentity) String() string {
	return string(id)
}

// Conversation identifies where an inbound event came from
type Conversation struct {
	RawID    string // Platform ID (wxid or xxx@chatroom)
	ChatType ChatType
	SenderID string // Actual sender inside a group, equals RawID for direct chats
}

// IsGroup checks if this is a group chat
func (c *Conversation) IsGroup() bool {
	return c.ChatType == ChatTypeGroup
}
