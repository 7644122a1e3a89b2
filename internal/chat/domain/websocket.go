package domain

import "encoding/json"

// Action websocket request action
type Action string

const (
	// ActionSendMessage websocket action send_message
	ActionSendMessage Action = "send_message"
	// ActionMarkRead websocket action mark_read
	ActionMarkRead Action = "mark_read"
	// ActionTyping websocket action typing
	ActionTyping Action = "typing"
	// ActionPing websocket action ping
	ActionPing Action = "ping"
)

// WSRequest is the inbound client envelope. Data stays raw until the action
// is known, then decodes into exactly one of the payload types below.
type WSRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// SendMessageData is the payload of send_message.
type SendMessageData struct {
	ChatID          int64  `json:"chat_id"`
	Text            string `json:"text"`
	ClientMessageID string `json:"client_message_id"`
}

// MarkReadData is the payload of mark_read.
type MarkReadData struct {
	MessageID int64 `json:"message_id"`
}

// TypingData is the payload of typing.
type TypingData struct {
	ChatID   int64 `json:"chat_id"`
	IsTyping bool  `json:"is_typing"`
}

// EventType websocket server event type
type EventType string

const (
	// EventNewMessage a message from another chat member
	EventNewMessage EventType = "new_message"
	// EventMessageSent personal acknowledgment carrying the canonical record
	EventMessageSent EventType = "message_sent"
	// EventMessageRead a member read a message
	EventMessageRead EventType = "message_read"
	// EventTypingIndicator a member started or stopped typing
	EventTypingIndicator EventType = "typing_indicator"
	// EventUserStatus a user went online or offline
	EventUserStatus EventType = "user_status"
	// EventPong reply to a client ping
	EventPong EventType = "pong"
	// EventError a failure while handling one inbound event
	EventError EventType = "error"
)

// WSEvent is the outbound server envelope.
type WSEvent struct {
	Type    EventType   `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// MessageReadData is the payload of message_read events.
type MessageReadData struct {
	MessageID int64 `json:"message_id"`
	ChatID    int64 `json:"chat_id"`
	ReaderID  int64 `json:"reader_id"`
}

// TypingIndicatorData is the payload of typing_indicator events.
type TypingIndicatorData struct {
	ChatID   int64 `json:"chat_id"`
	UserID   int64 `json:"user_id"`
	IsTyping bool  `json:"is_typing"`
}

// UserStatus values carried by user_status events.
const (
	UserStatusOnline  = "online"
	UserStatusOffline = "offline"
)

// UserStatusData is the payload of user_status events.
type UserStatusData struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// NewMessageEvent builds a new_message event.
func NewMessageEvent(rec MessageRecord) WSEvent {
	return WSEvent{Type: EventNewMessage, Data: rec}
}

// MessageSentEvent builds a message_sent acknowledgment.
func MessageSentEvent(rec MessageRecord) WSEvent {
	return WSEvent{Type: EventMessageSent, Data: rec}
}

// MessageReadEvent builds a message_read event.
func MessageReadEvent(messageID, chatID, readerID int64) WSEvent {
	return WSEvent{Type: EventMessageRead, Data: MessageReadData{
		MessageID: messageID,
		ChatID:    chatID,
		ReaderID:  readerID,
	}}
}

// TypingIndicatorEvent builds a typing_indicator event.
func TypingIndicatorEvent(chatID, userID int64, isTyping bool) WSEvent {
	return WSEvent{Type: EventTypingIndicator, Data: TypingIndicatorData{
		ChatID:   chatID,
		UserID:   userID,
		IsTyping: isTyping,
	}}
}

// UserStatusEvent builds a user_status event.
func UserStatusEvent(userID int64, status string) WSEvent {
	return WSEvent{Type: EventUserStatus, Data: UserStatusData{
		UserID: userID,
		Status: status,
	}}
}

// PongEvent builds a pong event.
func PongEvent() WSEvent {
	return WSEvent{Type: EventPong}
}

// ErrorEvent builds an error event. Errors never close the connection.
func ErrorEvent(msg string) WSEvent {
	return WSEvent{Type: EventError, Message: msg}
}
