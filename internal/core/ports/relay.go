package ports

// Relay pushes events to sockets joined to a chat room. Delivery is best
// effort; the chat repository stays the source of truth.
type Relay interface {
	Broadcast(chatID, event string, payload any)
}

// EventPublisher hands domain events to an external broker (e.g. a mailer
// consuming adoption notifications). Implementations must not block long.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}
