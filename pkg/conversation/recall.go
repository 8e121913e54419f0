package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/vectorindex"
)

// Recall queries the durable conversation mirror for exchanges from earlier
// sessions of the same user. Strictly best-effort; every failure degrades to
// an empty result.
type Recall struct {
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	logger            *log.Logger
}

func NewRecall(embeddingProvider embedding.Provider, index vectorindex.Index, logger *log.Logger) *Recall {
	if logger == nil {
		logger = log.Default()
	}
	return &Recall{
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            logger,
	}
}

// RelevantHistory returns prior exchanges of userID semantically close to
// query, rendered as prompt-ready lines. Returns "" when nothing is stored
// or the lookup fails.
func (r *Recall) RelevantHistory(ctx context.Context, userID, query string, topK int) string {
	if r.index == nil || r.embeddingProvider == nil {
		return ""
	}
	if topK <= 0 {
		topK = 3
	}

	vector, err := r.embeddingProvider.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Printf("[WARN] Conversation recall embedding failed for %s: %v", userID, err)
		return ""
	}

	matches, err := r.index.Query(ctx, vector, topK, map[string]string{"user_id": userID})
	if err != nil {
		r.logger.Printf("[WARN] Conversation recall query failed for %s: %v", userID, err)
		return ""
	}
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	for _, match := range matches {
		q := match.Metadata["query"]
		a := match.Metadata["response_summary"]
		if q == "" && a == "" {
			continue
		}
		b.WriteString("En una conversación anterior:\n")
		b.WriteString(fmt.Sprintf("- Usuario: %s\n", q))
		b.WriteString(fmt.Sprintf("- Asistente: %s\n\n", a))
	}
	return b.String()
}
