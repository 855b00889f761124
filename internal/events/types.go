package events

// Event type constants, format: domain.action. Each outbound event is
// addressed to one or more per-user channels.

// Message events
const (
	EventTypeMessageNew     = "message.new"
	EventTypeMessageSent    = "message.sent"
	EventTypeMessageStatus  = "message.status"
	EventTypeMessagesRead   = "messages.read"
	EventTypeMessageDeleted = "message.deleted"
)

// Reaction events
const (
	EventTypeReactionAdded   = "reaction.added"
	EventTypeReactionRemoved = "reaction.removed"
)

// Presence and typing events
const (
	EventTypeUserStatusChange = "presence.changed"
	EventTypeTypingStarted    = "typing.started"
	EventTypeTypingStopped    = "typing.stopped"
)

// Profile events
const (
	EventTypeProfileUpdated = "profile.updated"
)
