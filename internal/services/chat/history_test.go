package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/repository/conversation"
	"github.com/iyunix/kairos/internal/repository/message"
	"github.com/iyunix/kairos/internal/repository/repotest"
	"github.com/iyunix/kairos/internal/services/ai"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func sampleMessages() []domain.Message {
	return []domain.Message{
		{Sender: domain.SenderUser, Text: "Hola"},
		{Sender: domain.SenderAI, Text: "¡Hola! ¿Qué tal?"},
		{Sender: domain.SenderUser, Text: "Bien"},
	}
}

func TestAssembleHistoryTranslatesRoles(t *testing.T) {
	history := AssembleHistory(sampleMessages(), 0)

	require.Len(t, history, 3)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Hola"}, history[0])
	assert.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: "¡Hola! ¿Qué tal?"}, history[1])
	assert.Equal(t, ai.RoleUser, history[2].Role)
}

func TestAssembleHistoryWindow(t *testing.T) {
	history := AssembleHistory(sampleMessages(), 2)

	require.Len(t, history, 2)
	assert.Equal(t, "¡Hola! ¿Qué tal?", history[0].Content)
	assert.Equal(t, "Bien", history[1].Content)

	assert.Len(t, AssembleHistory(sampleMessages(), 10), 3)
	assert.Empty(t, AssembleHistory(nil, 0))
}

func TestBuildTranscriptPutsSystemFirst(t *testing.T) {
	profile := Profile{TargetLanguage: "Spanish", FluencyLevel: "Beginner", Topic: "Food"}
	transcript := BuildTranscript(profile, AssembleHistory(sampleMessages(), 0))

	require.Len(t, transcript, 4)
	assert.Equal(t, ai.RoleSystem, transcript[0].Role)
	assert.Equal(t, BuildSystemPrompt(profile), transcript[0].Content)
	assert.Equal(t, "Hola", transcript[1].Content)
}

func TestHistoryAssemblerLoad(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()

	user := &domain.User{Email: "h@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	conv, err := conversation.NewConversationRepository(db).Create(ctx, &domain.Conversation{UserID: user.ID, Topic: "Food"})
	require.NoError(t, err)

	messages := message.NewMessageRepository(db)
	for _, m := range sampleMessages() {
		m.ConversationID = conv.ID
		_, err := messages.Create(ctx, &m)
		require.NoError(t, err)
	}

	history, err := NewHistoryAssembler(messages, 0, nopLogger{}).Load(ctx, conv.ID)
	require.NoError(t, err)

	count, err := messages.CountByConversationID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, history, int(count))
	assert.Equal(t, []string{ai.RoleUser, ai.RoleAssistant, ai.RoleUser},
		[]string{history[0].Role, history[1].Role, history[2].Role})
}
