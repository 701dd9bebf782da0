package ports

import (
	"context"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// ChatRepository persists chats and their messages.
type ChatRepository interface {
	// FindOrCreate returns the chat for the unordered pair (a, b), creating it
	// atomically when absent. created reports whether a new chat was written.
	FindOrCreate(ctx context.Context, a, b string) (chat *domain.Chat, created bool, err error)
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Chat, error)
	Touch(ctx context.Context, chatID string, at time.Time) error
	DeleteByUser(ctx context.Context, userID string) error

	CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindMessage(ctx context.Context, chatID, messageID string) (*domain.Message, error)
	// ListMessages returns the chat history in creation order.
	ListMessages(ctx context.Context, chatID string) ([]*domain.Message, error)
	LastMessage(ctx context.Context, chatID string) (*domain.Message, error)
	CountUnread(ctx context.Context, chatID, receiverID string) (int64, error)
	// MarkRead sets read_at on a message that has not been read yet.
	MarkRead(ctx context.Context, chatID, messageID string, at time.Time) error
	MarkAllRead(ctx context.Context, chatID, receiverID string, at time.Time) (int64, error)
}
