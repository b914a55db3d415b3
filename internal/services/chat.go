package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/data/sessions"
	"github.com/yungbote/nutribridge-backend/internal/modules/assistant"
	"github.com/yungbote/nutribridge-backend/internal/modules/snapshots"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

type ChatReply struct {
	Response string           `json:"response"`
	History  []assistant.Turn `json:"history"`
}

type ChatService interface {
	Send(ctx context.Context, message string) (*ChatReply, error)
	History(ctx context.Context) ([]assistant.Turn, error)
	Clear(ctx context.Context) error
}

type chatService struct {
	log       *logger.Logger
	store     sessions.Store
	collector *snapshots.Collector
	assistant *assistant.Assistant
}

func NewChatService(baseLog *logger.Logger, store sessions.Store, collector *snapshots.Collector, a *assistant.Assistant) ChatService {
	return &chatService{
		log:       baseLog.With("service", "ChatService"),
		store:     store,
		collector: collector,
		assistant: a,
	}
}

func (s *chatService) Send(ctx context.Context, message string) (*ChatReply, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apierr.BadRequest("empty_message", "Empty message.")
	}
	history, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	pc := s.promptContext(ctx, userID)
	pc.Conversation = assistant.LastTurns(history, assistant.PromptTurns)

	reply := s.assistant.Reply(ctx, message, pc)
	history = assistant.AppendTurn(history, message, reply)
	if err := s.store.Save(ctx, userID, history); err != nil {
		return nil, fmt.Errorf("save chat session: %w", err)
	}
	return &ChatReply{Response: reply, History: history}, nil
}

func (s *chatService) promptContext(ctx context.Context, userID uuid.UUID) assistant.Context {
	healthView, dietView := s.collector.Both(ctx, userID)
	pc := assistant.Context{Health: healthView, Diet: dietView}
	if d, ok := dietView.(*snapshots.Diet); ok {
		pc.Summary = d.Summary
		pc.KeyMetrics = d.KeyMetrics
		return pc
	}
	// The diet view failed as a whole; load the block on its own so the
	// profile and goal plan still reach the prompt.
	km, err := s.collector.KeyMetrics(ctx, userID)
	if err != nil {
		s.log.Warn("key metrics fell back to defaults", "user_id", userID, "error", err)
	}
	pc.KeyMetrics = km
	return pc
}

func (s *chatService) History(ctx context.Context) ([]assistant.Turn, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Load(ctx, userID)
}

func (s *chatService) Clear(ctx context.Context) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	return s.store.Clear(ctx, userID)
}
