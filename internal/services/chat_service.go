// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/repository/conversation"
	"github.com/iyunix/kairos/internal/repository/message"
	"github.com/iyunix/kairos/internal/repository/user"
	"github.com/iyunix/kairos/internal/services/ai"
	chatservice "github.com/iyunix/kairos/internal/services/chat"
)

// TurnRequest is one incoming user utterance.
type TurnRequest struct {
	UserID         uint
	Text           string
	ConversationID *uint
	Topic          *string
}

// TurnResult carries both persisted messages of a completed turn.
type TurnResult struct {
	ConversationID uint
	UserMessage    *domain.Message
	AIMessage      *domain.Message
}

// ChatService runs the conversation turn pipeline.
type ChatService struct {
	config   *chatservice.Config
	userRepo user.UserRepository
	convRepo conversation.ConversationRepository
	msgRepo  message.MessageRepository
	history  *chatservice.HistoryAssembler
	tutor    ai.CompletionProvider
	logger   Logger
}

func NewChatService(
	config *chatservice.Config,
	userRepo user.UserRepository,
	convRepo conversation.ConversationRepository,
	msgRepo message.MessageRepository,
	tutor ai.CompletionProvider,
	logger Logger,
) (*ChatService, error) {
	// Validate dependencies
	if userRepo == nil || convRepo == nil || msgRepo == nil {
		return nil, domain.NewValidationError("constructor", "repositories are required")
	}
	if tutor == nil {
		return nil, domain.NewValidationError("constructor", "completion provider is required")
	}
	if config == nil {
		config = chatservice.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, domain.NewValidationError("config", err.Error())
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		config:   config,
		userRepo: userRepo,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		history:  chatservice.NewHistoryAssembler(msgRepo, config.HistoryWindow, logger),
		tutor:    tutor,
		logger:   logger,
	}, nil
}

// ProcessMessage runs one turn. Conversation creation and the user message
// are committed before the tutor is called, so a tutor failure leaves the
// user message without a reply.
func (s *ChatService) ProcessMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	const op = "process_message"

	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError(op, "Message text is required")
	}

	// ResolveUser
	u, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, domain.NewNotFoundError(op, "User not found")
		}
		return nil, domain.NewInternalError(op, "failed to load user", err)
	}

	// ResolveOrCreateConversation
	conv, err := s.resolveConversation(ctx, u, req)
	if err != nil {
		return nil, err
	}

	// PersistUserTurn
	userMsg, err := s.msgRepo.Create(ctx, &domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderUser,
		Text:           req.Text,
	})
	if err != nil {
		return nil, domain.NewInternalError(op, "failed to save message", err)
	}

	// BuildContext
	history, err := s.history.Load(ctx, conv.ID)
	if err != nil {
		return nil, domain.NewInternalError(op, "failed to load history", err)
	}
	transcript := chatservice.BuildTranscript(chatservice.Profile{
		TargetLanguage: u.TargetLanguage,
		FluencyLevel:   u.FluencyLevel,
		Topic:          conv.Topic,
	}, history)

	// InvokeTutor. From here on a client disconnect aborts nothing.
	detached := context.WithoutCancel(ctx)
	tutorCtx, cancel := context.WithTimeout(detached, s.config.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.tutor.GetCompletion(tutorCtx, s.config.Deployment, transcript)
	if err != nil {
		s.logger.Error("tutor call failed",
			"conversation_id", conv.ID,
			"user_message_id", userMsg.ID,
			"error", err)
		return nil, domain.NewUpstreamError(op, err)
	}
	s.logger.Info("tutor replied",
		"conversation_id", conv.ID,
		"transcript_len", len(transcript),
		"duration", time.Since(start))

	// PersistAiTurn
	aiMsg, err := s.msgRepo.Create(detached, &domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderAI,
		Text:           reply,
	})
	if err != nil {
		return nil, domain.NewInternalError(op, "failed to save reply", err)
	}

	return &TurnResult{ConversationID: conv.ID, UserMessage: userMsg, AIMessage: aiMsg}, nil
}

func (s *ChatService) resolveConversation(ctx context.Context, u *domain.User, req TurnRequest) (*domain.Conversation, error) {
	const op = "resolve_conversation"

	// A zero ID is treated like an absent one and starts a new thread.
	if req.ConversationID != nil && *req.ConversationID != 0 {
		conv, err := s.convRepo.FindByID(ctx, *req.ConversationID)
		if err != nil {
			if errors.Is(err, conversation.ErrConversationNotFound) {
				return nil, domain.NewNotFoundError(op, "Conversation not found")
			}
			return nil, domain.NewInternalError(op, "failed to load conversation", err)
		}
		return conv, nil
	}

	conv, err := s.convRepo.Create(ctx, &domain.Conversation{UserID: u.ID, Topic: s.topicFor(u, req.Topic)})
	if err != nil {
		return nil, domain.NewInternalError(op, "failed to create conversation", err)
	}
	s.logger.Info("conversation started", "conversation_id", conv.ID, "user_id", u.ID, "topic", conv.Topic)
	return conv, nil
}

// topicFor prefers the request topic, then the user's current topic.
func (s *ChatService) topicFor(u *domain.User, requested *string) string {
	if requested != nil {
		if t := strings.TrimSpace(*requested); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(u.Topic()); t != "" {
		return t
	}
	return s.config.DefaultTopic
}

// GetHistory returns the conversation's messages oldest first.
func (s *ChatService) GetHistory(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	const op = "get_history"

	if _, err := s.convRepo.FindByID(ctx, conversationID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, domain.NewNotFoundError(op, "Conversation not found")
		}
		return nil, domain.NewInternalError(op, "failed to load conversation", err)
	}

	messages, err := s.msgRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, domain.NewInternalError(op, "failed to load messages", err)
	}
	return messages, nil
}
