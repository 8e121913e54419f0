package generation

import (
	"context"
	"log"
	"strings"

	"bakery-support-be/internal/constant"
	"bakery-support-be/pkg/conversation"
	"bakery-support-be/pkg/llm"
	"bakery-support-be/pkg/retrieval"
	"bakery-support-be/pkg/store"
)

// Retriever produces product context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*retrieval.Result, error)
}

// ErrorSink receives a synthetic feedback entry for every degraded reply so
// pipeline failures surface in the feedback summary.
type ErrorSink interface {
	RecordError(ctx context.Context, query, response, provider, detail, sessionID string)
}

// Reply is the structured payload returned for every query, degraded or not.
type Reply struct {
	Response       string            `json:"response"`
	Sources        []store.SourceRef `json:"sources"`
	Provider       string            `json:"provider"`
	DetectedIntent string            `json:"detected_intent,omitempty"`
	ErrorFlag      bool              `json:"error_flag,omitempty"`
	ErrorType      string            `json:"error_type,omitempty"`
}

// Generator runs the full answer pipeline: retrieval, prompt assembly,
// completion, history update. It never surfaces an error to the caller; any
// stage failure becomes a degraded but well-formed Reply.
type Generator struct {
	retriever          Retriever
	completionProvider llm.CompletionProvider
	recall             *conversation.Recall
	errorSink          ErrorSink
	logger             *log.Logger
}

func NewGenerator(retriever Retriever, completionProvider llm.CompletionProvider, recall *conversation.Recall, errorSink ErrorSink, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		retriever:          retriever,
		completionProvider: completionProvider,
		recall:             recall,
		errorSink:          errorSink,
		logger:             logger,
	}
}

// Generate answers query for the session held in history. history may be nil
// for one-shot queries.
func (g *Generator) Generate(ctx context.Context, query string, history *conversation.History) *Reply {
	detectedIntent := DetectHandoffIntent(query)

	result, err := g.retriever.Retrieve(ctx, query)
	if err != nil {
		g.logger.Printf("[ERROR] Retrieval failed: %v", err)
		g.recordError(ctx, query, history, err.Error())
		return g.degraded(detectedIntent, constant.ErrorTypeGeneration)
	}

	conversationContext := ""
	if history != nil {
		conversationContext = history.Context(conversation.DefaultContextMaxChars)
	}
	if conversationContext == "" && g.recall != nil && history != nil {
		conversationContext = g.recall.RelevantHistory(ctx, history.UserID(), query, 3)
	}

	prompt := BuildPrompt(result.Context, conversationContext, query)

	response, err := g.completionProvider.Complete(ctx, prompt)
	if err != nil {
		g.logger.Printf("[ERROR] Completion failed: %v", err)
		g.recordError(ctx, query, history, err.Error())
		return g.degraded(detectedIntent, constant.ErrorTypeGeneration)
	}
	if strings.TrimSpace(response) == "" {
		g.logger.Printf("[ERROR] Completion returned an empty response")
		g.recordError(ctx, query, history, "respuesta vacía del modelo")
		return g.degraded(detectedIntent, constant.ErrorTypeResponseFormat)
	}

	if history != nil {
		history.AddExchange(query, response, result.Sources)
	}

	return &Reply{
		Response:       response,
		Sources:        result.Sources,
		Provider:       constant.ChatProviderClaude,
		DetectedIntent: detectedIntent,
	}
}

// BuildPrompt fills the assistant template. Placeholders absent from the
// template are simply not replaced, so template edits stay cheap.
func BuildPrompt(productContext, conversationContext, question string) string {
	replacer := strings.NewReplacer(
		"{context}", productContext,
		"{conversation_context}", conversationContext,
		"{question}", question,
	)
	return replacer.Replace(constant.AssistantPromptTemplate)
}

// recordError files the failure as a rating-1 feedback entry for operator
// visibility. Best-effort; the degraded reply goes out regardless.
func (g *Generator) recordError(ctx context.Context, query string, history *conversation.History, detail string) {
	if g.errorSink == nil {
		return
	}
	sessionID := ""
	if history != nil {
		sessionID = history.UserID()
	}
	g.errorSink.RecordError(ctx, query, constant.DegradedResponseMessage, constant.ChatProviderClaude, detail, sessionID)
}

func (g *Generator) degraded(detectedIntent, errorType string) *Reply {
	return &Reply{
		Response:       constant.DegradedResponseMessage,
		Sources:        []store.SourceRef{},
		Provider:       constant.ChatProviderClaude,
		DetectedIntent: detectedIntent,
		ErrorFlag:      true,
		ErrorType:      errorType,
	}
}
