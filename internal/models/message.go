package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Типы сообщений
const (
	MessageTypeText       = "text"
	MessageTypeAttachment = "attachment"
)

// Message представляет личное сообщение между двумя пользователями,
// опционально привязанное к обмену или предложению
type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id"`
	TradeID     *uuid.UUID `json:"trade_id,omitempty"`
	ProposalID  *uuid.UUID `json:"proposal_id,omitempty"`
	Content     string     `json:"content"`
	Timestamp   time.Time  `json:"timestamp"`
	IsRead      bool       `json:"is_read"`
	MessageType string     `json:"message_type"`

	// Дополнительные поля для API
	Sender   *User `json:"sender_details,omitempty"`
	Receiver *User `json:"receiver_details,omitempty"`
}

// Conversation представляет сводку переписки с одним собеседником.
// Это производная структура, в базе она не хранится.
type Conversation struct {
	OtherUserID uuid.UUID `json:"other_user_id"`
	OtherUser   *User     `json:"other_user,omitempty"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
}

// IsValidMessageType проверяет допустимость типа сообщения
func IsValidMessageType(messageType string) bool {
	return messageType == MessageTypeText || messageType == MessageTypeAttachment
}

// BuildConversations агрегирует плоский список сообщений пользователя в сводки
// по собеседникам: каждый собеседник ровно один раз, последнее сообщение по
// времени и число непрочитанных сообщений от него. Результат отсортирован по
// времени последнего сообщения по убыванию; при равенстве порядок стабилен
// относительно порядка входных сообщений.
func BuildConversations(userID uuid.UUID, messages []Message) []Conversation {
	byPeer := make(map[uuid.UUID]*Conversation)
	var order []uuid.UUID

	for i := range messages {
		msg := &messages[i]

		var peerID uuid.UUID
		switch userID {
		case msg.SenderID:
			peerID = msg.ReceiverID
		case msg.ReceiverID:
			peerID = msg.SenderID
		default:
			// Чужое сообщение, пропускаем
			continue
		}

		// Сообщение самому себе собеседника не образует
		if peerID == userID {
			continue
		}

		conv, ok := byPeer[peerID]
		if !ok {
			conv = &Conversation{OtherUserID: peerID}
			byPeer[peerID] = conv
			order = append(order, peerID)
		}

		if conv.LastMessage == nil || msg.Timestamp.After(conv.LastMessage.Timestamp) {
			conv.LastMessage = msg
		}

		// Непрочитанными считаются только сообщения собеседника текущему пользователю
		if msg.ReceiverID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
	}

	result := make([]Conversation, 0, len(order))
	for _, peerID := range order {
		result = append(result, *byPeer[peerID])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastMessage.Timestamp.After(result[j].LastMessage.Timestamp)
	})

	return result
}
