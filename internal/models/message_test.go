package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(sender, receiver uuid.UUID, at time.Time, read bool) Message {
	return Message{
		ID:          uuid.New(),
		SenderID:    sender,
		ReceiverID:  receiver,
		Content:     "test",
		Timestamp:   at,
		IsRead:      read,
		MessageType: MessageTypeText,
	}
}

func TestBuildConversations_OneEntryPerPeer(t *testing.T) {
	me := uuid.New()
	alice := uuid.New()
	bob := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	messages := []Message{
		msgAt(me, alice, base, true),
		msgAt(alice, me, base.Add(1*time.Minute), false),
		msgAt(alice, me, base.Add(2*time.Minute), false),
		msgAt(bob, me, base.Add(30*time.Second), false),
		msgAt(me, bob, base.Add(5*time.Minute), true),
	}

	conversations := BuildConversations(me, messages)
	require.Len(t, conversations, 2)

	// Боб последним получил сообщение — его переписка первая
	assert.Equal(t, bob, conversations[0].OtherUserID)
	assert.Equal(t, base.Add(5*time.Minute), conversations[0].LastMessage.Timestamp)
	// Непрочитанное от Боба одно; мои собственные непрочитанными не считаются
	assert.Equal(t, 1, conversations[0].UnreadCount)

	assert.Equal(t, alice, conversations[1].OtherUserID)
	assert.Equal(t, base.Add(2*time.Minute), conversations[1].LastMessage.Timestamp)
	assert.Equal(t, 2, conversations[1].UnreadCount)
}

func TestBuildConversations_UnreadOnlyCountsIncoming(t *testing.T) {
	me := uuid.New()
	peer := uuid.New()
	base := time.Now()

	messages := []Message{
		msgAt(me, peer, base, false),                     // мое непрочитанное собеседником
		msgAt(peer, me, base.Add(time.Minute), true),     // входящее прочитанное
		msgAt(peer, me, base.Add(2*time.Minute), false),  // входящее непрочитанное
	}

	conversations := BuildConversations(me, messages)
	require.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCount)
}

func TestBuildConversations_Empty(t *testing.T) {
	assert.Empty(t, BuildConversations(uuid.New(), nil))
}

func TestBuildConversations_IgnoresForeignAndSelfMessages(t *testing.T) {
	me := uuid.New()
	a := uuid.New()
	b := uuid.New()

	messages := []Message{
		msgAt(a, b, time.Now(), false), // переписка двух других пользователей
		msgAt(me, me, time.Now(), false),
	}

	assert.Empty(t, BuildConversations(me, messages))
}

func TestBuildConversations_SortedByLastMessageDesc(t *testing.T) {
	me := uuid.New()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var messages []Message
	peers := make([]uuid.UUID, 4)
	for i := range peers {
		peers[i] = uuid.New()
		messages = append(messages, msgAt(peers[i], me, base.Add(time.Duration(i)*time.Hour), false))
	}

	conversations := BuildConversations(me, messages)
	require.Len(t, conversations, 4)

	for i := 1; i < len(conversations); i++ {
		prev := conversations[i-1].LastMessage.Timestamp
		cur := conversations[i].LastMessage.Timestamp
		assert.False(t, cur.After(prev), "переписки должны идти по убыванию времени")
	}
	assert.Equal(t, peers[3], conversations[0].OtherUserID)
}
