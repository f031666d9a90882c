package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

func TestConversationIDRoundTrip(t *testing.T) {
	id := ConversationID(7, 42)
	require.Equal(t, "7:42", id)

	seekerID, providerID, err := ParseConversationID(id)
	require.NoError(t, err)
	require.EqualValues(t, 7, seekerID)
	require.EqualValues(t, 42, providerID)
}

func TestParseConversationIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "7", "7:42:9", "a:b", "0:42", "7:0", "-1:2"} {
		_, _, err := ParseConversationID(id)
		require.Error(t, err, "id %q", id)
		require.Equal(t, KindValidation, KindOf(err))
	}
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, ws.NopPublisher{})

	seeker := createSeeker(t, db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, db, "Bilal", "bilal@example.com", 24.86, 67.0)
	stranger := createSeeker(t, db, "Dania", "dania@example.com")

	_, err := svc.Send(stranger, models.ChatSend{
		ConversationID: ConversationID(seeker.ID, provider.ID),
		Content:        "hello",
	})
	require.Error(t, err)
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestSendAndHistory(t *testing.T) {
	db := newTestDB(t)
	events := &recordingPublisher{}
	svc := NewChatService(db, events)

	seeker := createSeeker(t, db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, db, "Bilal", "bilal@example.com", 24.86, 67.0)
	conv := ConversationID(seeker.ID, provider.ID)

	first, err := svc.Send(seeker, models.ChatSend{ConversationID: conv, Content: "Are you available tomorrow?"})
	require.NoError(t, err)
	require.Equal(t, seeker.Name, first.SenderName)

	_, err = svc.Send(provider, models.ChatSend{ConversationID: conv, Content: "Yes, after 10am"})
	require.NoError(t, err)

	messages, err := svc.History(seeker, conv)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "Are you available tomorrow?", messages[0].Content)
	require.Equal(t, "Yes, after 10am", messages[1].Content)

	require.Len(t, events.byStream(ws.StreamChats), 2)
}

func TestHistoryRequiresParticipant(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, ws.NopPublisher{})

	seeker := createSeeker(t, db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, db, "Bilal", "bilal@example.com", 24.86, 67.0)
	stranger := createSeeker(t, db, "Dania", "dania@example.com")

	_, err := svc.History(stranger, ConversationID(seeker.ID, provider.ID))
	require.Error(t, err)
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestListConversations(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, ws.NopPublisher{})

	seeker := createSeeker(t, db, "Ayesha", "ayesha@example.com")
	provider1 := createProvider(t, db, "Bilal", "bilal@example.com", 24.86, 67.0)
	provider2 := createProvider(t, db, "Chaudhry", "chaudhry@example.com", 24.87, 67.01)

	conv1 := ConversationID(seeker.ID, provider1.ID)
	conv2 := ConversationID(seeker.ID, provider2.ID)

	_, err := svc.Send(seeker, models.ChatSend{ConversationID: conv1, Content: "first"})
	require.NoError(t, err)
	_, err = svc.Send(seeker, models.ChatSend{ConversationID: conv2, Content: "second"})
	require.NoError(t, err)
	_, err = svc.Send(provider1, models.ChatSend{ConversationID: conv1, Content: "reply"})
	require.NoError(t, err)

	unread := map[string]bool{conv2: true}
	summaries, err := svc.ListConversations(seeker, func(id string) bool { return unread[id] })
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most recently active conversation first, with the latest message
	require.Equal(t, conv1, summaries[0].ID)
	require.Equal(t, "reply", summaries[0].LastMessage)
	require.Equal(t, provider1.Name, summaries[0].OtherName)
	require.False(t, summaries[0].HasUnread)

	require.Equal(t, conv2, summaries[1].ID)
	require.True(t, summaries[1].HasUnread)
}
