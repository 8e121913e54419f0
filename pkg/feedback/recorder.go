package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/vectorindex"
)

const DefaultFeedbackFile = "chatbot_feedback.json"

// Record is one rating left by a customer (or an automatic low rating logged
// for an internal error).
type Record struct {
	Timestamp string `json:"timestamp"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Provider  string `json:"provider"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	SessionID string `json:"session_id"`
}

// Summary aggregates the stored feedback without any external tooling.
type Summary struct {
	TotalFeedback        int             `json:"total_feedback"`
	AverageRating        float64         `json:"average_rating"`
	LowRatings           int             `json:"low_ratings"`
	LowRatingsPercentage float64         `json:"low_ratings_percentage"`
	RecentFeedback       []RecentComment `json:"recent_feedback"`
}

type RecentComment struct {
	Timestamp string `json:"timestamp"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Recorder appends feedback to a JSON file and mirrors each record into the
// feedback vector index for later semantic analysis. The file is the source
// of truth; the index write is best-effort.
type Recorder struct {
	mu                sync.Mutex
	filePath          string
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	logger            *log.Logger
}

func NewRecorder(filePath string, embeddingProvider embedding.Provider, index vectorindex.Index, logger *log.Logger) *Recorder {
	if filePath == "" {
		filePath = DefaultFeedbackFile
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		filePath:          filePath,
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            logger,
	}
}

// RecordFeedback stores one rating. Ratings run 1 to 5.
func (r *Recorder) RecordFeedback(ctx context.Context, query, response, provider string, rating int, comment, sessionID string) (*Record, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	now := time.Now()
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%s", now.Format("20060102_150405"))
	}

	record := Record{
		Timestamp: now.Format(time.RFC3339),
		Query:     query,
		Response:  response,
		Provider:  provider,
		Rating:    rating,
		Comment:   comment,
		SessionID: sessionID,
	}

	if err := r.appendToFile(record); err != nil {
		return nil, err
	}
	r.logger.Printf("[INFO] Retroalimentación registrada: %d/5 estrellas", rating)

	r.mirrorToIndex(ctx, record)

	return &record, nil
}

// RecordError stores a synthetic rating-1 entry for an internal failure so
// degraded responses stay visible in the feedback summary. Best-effort; the
// response path never fails because of it.
func (r *Recorder) RecordError(ctx context.Context, query, response, provider, detail, sessionID string) {
	comment := "Error técnico interno: " + detail
	if _, err := r.RecordFeedback(ctx, query, response, provider, 1, comment, sessionID); err != nil {
		r.logger.Printf("[WARN] No se pudo registrar el error como retroalimentación: %v", err)
	}
}

// Summary reads the feedback file and computes totals. Missing or empty
// files produce an all-zero summary.
func (r *Recorder) Summary() (*Summary, error) {
	r.mu.Lock()
	records, err := r.readAll()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	summary := &Summary{RecentFeedback: []RecentComment{}}
	if len(records) == 0 {
		return summary, nil
	}

	sum := 0
	for _, rec := range records {
		sum += rec.Rating
		if rec.Rating <= 2 {
			summary.LowRatings++
		}
	}
	summary.TotalFeedback = len(records)
	summary.AverageRating = round2(float64(sum) / float64(len(records)))
	summary.LowRatingsPercentage = round1(float64(summary.LowRatings) / float64(len(records)) * 100)

	// Last five, most recent first.
	for i := len(records) - 1; i >= 0 && len(summary.RecentFeedback) < 5; i-- {
		comment := records[i].Comment
		if len([]rune(comment)) > 100 {
			comment = string([]rune(comment)[:100]) + "..."
		}
		summary.RecentFeedback = append(summary.RecentFeedback, RecentComment{
			Timestamp: records[i].Timestamp,
			Rating:    records[i].Rating,
			Comment:   comment,
		})
	}
	return summary, nil
}

func (r *Recorder) appendToFile(record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0644)
}

func (r *Recorder) readAll() ([]Record, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("feedback file corrupted: %w", err)
	}
	return records, nil
}

func (r *Recorder) mirrorToIndex(ctx context.Context, record Record) {
	if r.index == nil || r.embeddingProvider == nil {
		return
	}

	vector, err := r.embeddingProvider.EmbedQuery(ctx, record.Query)
	if err != nil {
		r.logger.Printf("[WARN] Feedback embedding failed: %v", err)
		return
	}

	metadata := map[string]string{
		"timestamp":   record.Timestamp,
		"query":       truncateRunes(record.Query, 200),
		"provider":    record.Provider,
		"rating":      fmt.Sprintf("%d", record.Rating),
		"has_comment": fmt.Sprintf("%t", record.Comment != ""),
	}
	if record.Comment != "" {
		metadata["comment"] = truncateRunes(record.Comment, 100)
	}

	id := fmt.Sprintf("feedback_%d", time.Now().Unix())
	err = r.index.Upsert(ctx, []vectorindex.Record{{
		ID:       id,
		Values:   vector,
		Metadata: metadata,
	}})
	if err != nil {
		r.logger.Printf("[WARN] Feedback index upsert failed: %v", err)
		return
	}
	r.logger.Printf("[INFO] Retroalimentación guardada en el índice (ID: %s)", id)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
