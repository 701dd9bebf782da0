package domain

import (
	"errors"
	"time"
)

var ErrChatNotFound = errors.New("chat not found")
var ErrMessageNotFound = errors.New("message not found")

// Chat is a conversation between exactly two users. PairKey is the sorted
// pair of participant ids and is unique across chats.
type Chat struct {
	ID            string     `json:"id"`
	User1ID       string     `json:"user1_id"`
	User2ID       string     `json:"user2_id"`
	PairKey       string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// PairKey returns the order-independent key for two participants.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && (c.User1ID == userID || c.User2ID == userID)
}

// Other returns the participant that is not userID. It returns "" when
// userID is not a participant.
func (c *Chat) Other(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

// Message is immutable once written except for ReadAt.
type Message struct {
	ID         string     `json:"id"`
	ChatID     string     `json:"chat_id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// ChatSummary is the inbox view of a chat from one participant's side.
type ChatSummary struct {
	Chat        *Chat      `json:"chat"`
	Participant PublicUser `json:"participant"`
	LastMessage *Message   `json:"last_message,omitempty"`
	UnreadCount int64      `json:"unread_count"`
}
