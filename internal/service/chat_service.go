package service

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bakery-support-be/internal/constant"
	"bakery-support-be/internal/dto"
	"bakery-support-be/internal/repository/memory"
	"bakery-support-be/pkg/conversation"
	"bakery-support-be/pkg/events"
	"bakery-support-be/pkg/feedback"
	"bakery-support-be/pkg/generation"
	"bakery-support-be/pkg/nats"
	"bakery-support-be/pkg/retrieval"
	"bakery-support-be/pkg/support"
)

var (
	ErrInvalidSession = errors.New("sesión no válida, por favor inicia una nueva sesión")
	ErrEmptyMessage   = errors.New("el mensaje no puede estar vacío")
	ErrNoHistory      = errors.New("no hay historial de conversación")
)

// IChatService defines the chat widget service interface
type IChatService interface {
	InitChat(ctx context.Context, userID string) (*dto.InitChatResponse, error)
	HandleMessage(ctx context.Context, request *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)
	RecordFeedback(ctx context.Context, request *dto.ChatFeedbackRequest) error
	RequestSupport(ctx context.Context, request *dto.ChatSupportRequest) (*dto.ChatSupportResponse, error)
	SearchProducts(ctx context.Context, request *dto.ProductSearchRequest) ([]dto.ProductSearchResult, error)
	FeedbackSummary(ctx context.Context) (*dto.FeedbackSummaryResponse, error)
}

type chatService struct {
	sessionRepo     *memory.SessionRepository
	generator       *generation.Generator
	retrievalEngine *retrieval.Engine
	recorder        *feedback.Recorder
	supportSystem   *support.System
	mirror          conversation.Mirror
	maxHistory      int
	eventPublisher  *nats.Publisher
	chatLogger      *log.Logger
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	generator *generation.Generator,
	retrievalEngine *retrieval.Engine,
	recorder *feedback.Recorder,
	supportSystem *support.System,
	mirror conversation.Mirror,
	maxHistory int,
	eventPublisher *nats.Publisher,
) IChatService {
	return &chatService{
		sessionRepo:     sessionRepo,
		generator:       generator,
		retrievalEngine: retrievalEngine,
		recorder:        recorder,
		supportSystem:   supportSystem,
		mirror:          mirror,
		maxHistory:      maxHistory,
		eventPublisher:  eventPublisher,
		chatLogger:      initChatLogger(),
	}
}

func (s *chatService) InitChat(ctx context.Context, userID string) (*dto.InitChatResponse, error) {
	history := conversation.NewHistory(userID, conversation.Options{
		MaxHistory: s.maxHistory,
		Mirror:     s.mirror,
		Logger:     s.chatLogger,
	})
	s.sessionRepo.Save(history)

	s.chatLogger.Printf("[INFO] Sesión iniciada para el usuario: %s", history.UserID())
	return &dto.InitChatResponse{
		UserID:         history.UserID(),
		Message:        "Sesión de chat iniciada",
		WelcomeMessage: constant.WelcomeMessage,
	}, nil
}

func (s *chatService) HandleMessage(ctx context.Context, request *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	history, found := s.sessionRepo.Get(request.UserID)
	if !found {
		return nil, ErrInvalidSession
	}

	reply := s.generator.Generate(ctx, message, history)

	s.chatLogger.Printf("[INFO] Mensaje procesado para el usuario %s", request.UserID)
	return &dto.ChatMessageResponse{
		Response:       reply.Response,
		Sources:        reply.Sources,
		UserID:         request.UserID,
		Provider:       reply.Provider,
		DetectedIntent: reply.DetectedIntent,
		ErrorFlag:      reply.ErrorFlag,
		ErrorType:      reply.ErrorType,
	}, nil
}

func (s *chatService) RecordFeedback(ctx context.Context, request *dto.ChatFeedbackRequest) error {
	history, found := s.sessionRepo.Get(request.UserID)
	if !found {
		return ErrInvalidSession
	}

	exchanges := history.FullHistory()
	if len(exchanges) == 0 {
		return ErrNoHistory
	}
	last := exchanges[len(exchanges)-1]

	_, err := s.recorder.RecordFeedback(ctx, last.Query, last.Response,
		constant.ChatProviderClaude, request.Rating, request.Comment, request.UserID)
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewFeedbackReceived(request.UserID, request.Rating))
	return nil
}

func (s *chatService) RequestSupport(ctx context.Context, request *dto.ChatSupportRequest) (*dto.ChatSupportResponse, error) {
	history, found := s.sessionRepo.Get(request.UserID)
	if !found {
		return nil, ErrInvalidSession
	}

	exchanges := history.FullHistory()
	if len(exchanges) == 0 {
		return nil, ErrNoHistory
	}
	last := exchanges[len(exchanges)-1]

	ticketID, err := s.supportSystem.CreateTicket(
		last.Query,
		last.Response,
		exchanges,
		request.ContactInfo,
		support.PriorityMedium,
		"Solicitud de soporte humano desde el widget de chat",
	)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewTicketCreated(ticketID, support.PriorityMedium))
	s.chatLogger.Printf("[INFO] Ticket de soporte creado para el usuario %s", request.UserID)
	return &dto.ChatSupportResponse{
		TicketID: ticketID,
		Message:  "Ticket de soporte creado. Un representante se contactará contigo pronto.",
	}, nil
}

func (s *chatService) SearchProducts(ctx context.Context, request *dto.ProductSearchRequest) ([]dto.ProductSearchResult, error) {
	result, err := s.retrievalEngine.Search(ctx, request.Query, request.TopK)
	if err != nil {
		return nil, err
	}

	results := make([]dto.ProductSearchResult, 0, len(result.Matches))
	for _, match := range result.Matches {
		results = append(results, dto.ProductSearchResult{
			ID:    match.ID,
			Score: match.Score,
			Metadata: dto.ProductSearchMetadata{
				Title:         match.Metadata["title"],
				URL:           match.Metadata["source_url"],
				Price:         match.Metadata["price_range"],
				Availability:  match.Metadata["availability"],
				SaleInfo:      retrieval.DecodeSales(match.Metadata),
				HasActiveSale: match.Metadata["has_active_sale"] == "True",
			},
		})
	}
	return results, nil
}

func (s *chatService) FeedbackSummary(ctx context.Context) (*dto.FeedbackSummaryResponse, error) {
	summary, err := s.recorder.Summary()
	if err != nil {
		return nil, err
	}

	res := &dto.FeedbackSummaryResponse{
		TotalFeedback:        summary.TotalFeedback,
		AverageRating:        summary.AverageRating,
		LowRatings:           summary.LowRatings,
		LowRatingsPercentage: summary.LowRatingsPercentage,
	}
	for _, recent := range summary.RecentFeedback {
		res.RecentFeedback = append(res.RecentFeedback, dto.RecentFeedbackEntry{
			Timestamp: recent.Timestamp,
			Rating:    recent.Rating,
			Comment:   recent.Comment,
		})
	}
	return res, nil
}

// publishEvent fans the event out to NATS when a bus is configured. The chat
// flow never fails because of it.
func (s *chatService) publishEvent(ctx context.Context, event events.BaseEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.chatLogger.Printf("[WARN] Failed to publish %s event: %v", event.EventType(), err)
	}
}

func initChatLogger() *log.Logger {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return log.Default()
	}
	f, err := os.OpenFile(filepath.Join(logDir, "chatbot.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return log.Default()
	}
	return log.New(f, "", log.LstdFlags)
}
