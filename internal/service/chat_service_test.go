package service

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"bakery-support-be/internal/constant"
	"bakery-support-be/internal/dto"
	"bakery-support-be/internal/repository/memory"
	"bakery-support-be/pkg/feedback"
	"bakery-support-be/pkg/generation"
	"bakery-support-be/pkg/llm"
	"bakery-support-be/pkg/retrieval"
	"bakery-support-be/pkg/support"
	"bakery-support-be/pkg/vectorindex"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.9}, nil
}

func (fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{0.1, 0.9}}, nil
}

type fakeIndex struct {
	matches  []vectorindex.Match
	lastTopK int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]vectorindex.Match, error) {
	f.lastTopK = topK
	return f.matches, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, records []vectorindex.Record) error {
	return nil
}

func (f *fakeIndex) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	return nil, nil
}

type fakeCompletion struct {
	response string
	err      error
}

func (f *fakeCompletion) Complete(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestService(t *testing.T, completion *fakeCompletion) (IChatService, *fakeIndex) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)

	index := &fakeIndex{matches: []vectorindex.Match{{
		ID:    "product_1",
		Score: 0.9,
		Metadata: map[string]string{
			"title":        "Hogaza de Masa Madre",
			"category":     "pan",
			"price_range":  "$120.00 MXN",
			"availability": "Disponible",
			"source_url":   "https://masamadre.mx/products/hogaza",
		},
	}}}

	engine := retrieval.NewEngine(fakeEmbedder{}, index, 3, 0.80, quiet)
	recorder := feedback.NewRecorder(filepath.Join(t.TempDir(), "feedback.json"), nil, nil, quiet)
	generator := generation.NewGenerator(engine, completion, nil, recorder, quiet)
	supportSystem := support.NewSystem(filepath.Join(t.TempDir(), "tickets.json"), nil, quiet)

	return NewChatService(memory.NewSessionRepository(), generator, engine, recorder, supportSystem, nil, 5, nil), index
}

func initSession(t *testing.T, svc IChatService) string {
	t.Helper()
	res, err := svc.InitChat(context.Background(), "u1")
	if err != nil {
		t.Fatalf("InitChat() error = %v", err)
	}
	return res.UserID
}

func TestInitChatReturnsWelcome(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})

	res, err := svc.InitChat(context.Background(), "")
	if err != nil {
		t.Fatalf("InitChat() error = %v", err)
	}
	if res.UserID == "" {
		t.Error("an anonymous session should still get a user id")
	}
	if res.WelcomeMessage != constant.WelcomeMessage {
		t.Errorf("welcome = %q", res.WelcomeMessage)
	}
}

func TestHandleMessageFullFlow(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "Tenemos hogazas a $120 MXN. 🥖"})
	userID := initSession(t, svc)

	res, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "¿Tienen pan de masa madre?",
	})
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if res.ErrorFlag {
		t.Fatalf("unexpected degraded reply: %s", res.ErrorType)
	}
	if res.Provider != constant.ChatProviderClaude {
		t.Errorf("provider = %q", res.Provider)
	}
	if len(res.Sources) != 1 {
		t.Errorf("sources = %d, want 1", len(res.Sources))
	}
}

func TestHandleMessageRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})

	_, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  "nunca-iniciado",
		Message: "hola",
	})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestHandleMessageRejectsBlankMessage(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})
	userID := initSession(t, svc)

	_, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "   \n",
	})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestHandleMessageDegradesOnCompletionFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{err: errors.New("api down")})
	userID := initSession(t, svc)

	res, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "¿Tienen pan?",
	})
	if err != nil {
		t.Fatalf("degraded replies should not surface as errors, got %v", err)
	}
	if !res.ErrorFlag || res.ErrorType != constant.ErrorTypeGeneration {
		t.Errorf("flag=%v type=%q, want degraded generation_error", res.ErrorFlag, res.ErrorType)
	}
	if !strings.Contains(res.Response, "soporte") {
		t.Errorf("degraded message should point to human support, got %q", res.Response)
	}
}

func TestDegradedReplyFilesSyntheticFeedback(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{err: errors.New("api down")})
	userID := initSession(t, svc)

	res, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "¿Tienen pan?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.ErrorFlag {
		t.Fatal("expected degraded reply")
	}

	summary, err := svc.FeedbackSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalFeedback != 1 {
		t.Fatalf("total feedback = %d, want 1 synthetic entry", summary.TotalFeedback)
	}
	if summary.LowRatings != 1 || summary.AverageRating != 1.0 {
		t.Errorf("summary = %+v, want one rating-1 entry", summary)
	}
}

func TestRecordFeedbackNeedsHistory(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})
	userID := initSession(t, svc)

	err := svc.RecordFeedback(context.Background(), &dto.ChatFeedbackRequest{UserID: userID, Rating: 5})
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("err = %v, want ErrNoHistory", err)
	}
}

func TestRecordFeedbackAfterExchange(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "Tenemos hogazas."})
	userID := initSession(t, svc)

	if _, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "¿Tienen pan?",
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.RecordFeedback(context.Background(), &dto.ChatFeedbackRequest{
		UserID:  userID,
		Rating:  5,
		Comment: "muy útil",
	}); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}

	summary, err := svc.FeedbackSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalFeedback != 1 || summary.AverageRating != 5.0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRequestSupportNeedsHistory(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})
	userID := initSession(t, svc)

	_, err := svc.RequestSupport(context.Background(), &dto.ChatSupportRequest{
		UserID: userID,
		ContactInfo: support.ContactInfo{
			Name:  "María García",
			Email: "maria@example.com",
			Phone: "8112345678",
		},
	})
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("err = %v, want ErrNoHistory", err)
	}
}

func TestRequestSupportCreatesTicket(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "Tenemos hogazas."})
	userID := initSession(t, svc)

	if _, err := svc.HandleMessage(context.Background(), &dto.ChatMessageRequest{
		UserID:  userID,
		Message: "quiero hablar con una persona real",
	}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.RequestSupport(context.Background(), &dto.ChatSupportRequest{
		UserID: userID,
		ContactInfo: support.ContactInfo{
			Name:  "María García",
			Email: "maria@example.com",
			Phone: "8112345678",
		},
	})
	if err != nil {
		t.Fatalf("RequestSupport() error = %v", err)
	}
	if !strings.HasPrefix(res.TicketID, "TICKET-") {
		t.Errorf("ticket id = %q", res.TicketID)
	}
}

func TestSearchProducts(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletion{response: "hola"})

	results, err := svc.SearchProducts(context.Background(), &dto.ProductSearchRequest{Query: "pan"})
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Metadata.Title != "Hogaza de Masa Madre" {
		t.Errorf("title = %q", results[0].Metadata.Title)
	}
	if results[0].Metadata.HasActiveSale {
		t.Error("no sale flag was set in metadata")
	}
}

func TestSearchProductsHonorsTopK(t *testing.T) {
	svc, index := newTestService(t, &fakeCompletion{response: "hola"})

	if _, err := svc.SearchProducts(context.Background(), &dto.ProductSearchRequest{Query: "pan", TopK: 5}); err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if index.lastTopK != 5 {
		t.Errorf("topK = %d, want 5", index.lastTopK)
	}

	if _, err := svc.SearchProducts(context.Background(), &dto.ProductSearchRequest{Query: "pan"}); err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if index.lastTopK != 3 {
		t.Errorf("topK = %d, want engine default 3", index.lastTopK)
	}
}
