package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// MaxMessageLength bounds a chat message, counted in characters.
const MaxMessageLength = 2000

// Relay event names.
const (
	EventNewMessage   = "new_message"
	EventMessagesRead = "messages_read"
)

// ChatService owns chat persistence and pushes new messages to the relay.
// The repository is the source of truth; relay delivery is best effort.
type ChatService struct {
	chats    ports.ChatRepository
	users    ports.UserRepository
	relay    ports.Relay
	activity ports.ActivityRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewChatService(chats ports.ChatRepository, users ports.UserRepository, activity ports.ActivityRecorder, log zerolog.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		users:    users,
		activity: recorderOrNop(activity),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetRelay attaches the real-time relay. The relay itself depends on the
// service, so it is wired after construction.
func (s *ChatService) SetRelay(r ports.Relay) { s.relay = r }

// CreateChat returns the chat between user and otherID, creating it when the
// pair has none. created reports whether a new chat was written.
func (s *ChatService) CreateChat(ctx context.Context, user *domain.User, otherID string) (*domain.Chat, bool, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return nil, false, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	if otherID == user.ID {
		return nil, false, fmt.Errorf("%w: cannot start a chat with yourself", domain.ErrInvalidInput)
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		return nil, false, err
	}

	chat, created, err := s.chats.FindOrCreate(ctx, user.ID, otherID)
	if err != nil {
		return nil, false, fmt.Errorf("create chat: %w", err)
	}
	if created {
		s.activity.Record(activity(domain.ActivityChat, "create", user.ID, "started a chat",
			map[string]string{"chat_id": chat.ID, "with": otherID}))
	}
	return chat, created, nil
}

// GetChat returns the chat if user participates in it. Non-participants get
// domain.ErrChatNotFound so that chat ids do not leak.
func (s *ChatService) GetChat(ctx context.Context, chatID string, user *domain.User) (*domain.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(user.ID) {
		return nil, domain.ErrChatNotFound
	}
	return chat, nil
}

// ListChats returns the user's inbox, most recent activity first.
func (s *ChatService) ListChats(ctx context.Context, user *domain.User) ([]*domain.ChatSummary, error) {
	chats, err := s.chats.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.Other(user.ID))
	}
	others, err := s.users.FindManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ChatSummary, 0, len(chats))
	for _, c := range chats {
		otherID := c.Other(user.ID)
		summary := &domain.ChatSummary{Chat: c, Participant: domain.PublicUser{ID: otherID}}
		if u, ok := others[otherID]; ok {
			summary.Participant = u.Public()
		}
		if summary.LastMessage, err = s.chats.LastMessage(ctx, c.ID); err != nil && !errors.Is(err, domain.ErrMessageNotFound) {
			return nil, err
		}
		if summary.UnreadCount, err = s.chats.CountUnread(ctx, c.ID, user.ID); err != nil {
			return nil, err
		}
		out = append(out, summary)
	}

	slices.SortStableFunc(out, func(a, b *domain.ChatSummary) int {
		return lastActivity(b.Chat).Compare(lastActivity(a.Chat))
	})
	return out, nil
}

func lastActivity(c *domain.Chat) time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}

// ListMessages returns the full history in creation order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string, user *domain.User) ([]*domain.Message, error) {
	chat, err := s.GetChat(ctx, chatID, user)
	if err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, chat.ID)
}

// PostMessage persists a message from sender to receiverID and relays it to
// the chat room. Both must be the chat's participants.
func (s *ChatService) PostMessage(ctx context.Context, chatID string, sender *domain.User, receiverID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, MaxMessageLength)
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(sender.ID) {
		return nil, domain.ErrForbidden
	}
	if receiverID == "" {
		receiverID = chat.Other(sender.ID)
	}
	if receiverID != chat.Other(sender.ID) {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	msg, err := s.chats.CreateMessage(ctx, &domain.Message{
		ChatID:     chat.ID,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	if err := s.chats.Touch(ctx, chat.ID, now); err != nil {
		s.log.Warn().Err(err).Str("chat_id", chat.ID).Msg("touch chat failed")
	}

	if s.relay != nil {
		s.relay.Broadcast(chat.ID, EventNewMessage, msg)
	}
	return msg, nil
}

// MarkRead stamps read_at on a message. Only its receiver may do so, and the
// first timestamp wins.
func (s *ChatService) MarkRead(ctx context.Context, chatID, messageID string, reader *domain.User) (*domain.Message, error) {
	chat, err := s.GetChat(ctx, chatID, reader)
	if err != nil {
		return nil, err
	}
	msg, err := s.chats.FindMessage(ctx, chat.ID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != reader.ID {
		return nil, domain.ErrForbidden
	}
	if msg.ReadAt != nil {
		return msg, nil
	}

	now := s.now()
	if err := s.chats.MarkRead(ctx, chat.ID, msg.ID, now); err != nil {
		return nil, err
	}
	msg.ReadAt = &now
	return msg, nil
}

// MarkAllRead stamps every unread message addressed to reader in the chat.
func (s *ChatService) MarkAllRead(ctx context.Context, chatID string, reader *domain.User) (int64, error) {
	chat, err := s.GetChat(ctx, chatID, reader)
	if err != nil {
		return 0, err
	}
	n, err := s.chats.MarkAllRead(ctx, chat.ID, reader.ID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 && s.relay != nil {
		s.relay.Broadcast(chat.ID, EventMessagesRead, map[string]any{"chatId": chat.ID, "userId": reader.ID, "count": n})
	}
	return n, nil
}
