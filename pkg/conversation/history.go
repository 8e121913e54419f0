package conversation

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bakery-support-be/internal/constant"
	"bakery-support-be/pkg/store"
)

const (
	DefaultMaxHistory      = 5
	DefaultContextMaxChars = 1000

	// Responses longer than this are abbreviated inside the rendered
	// transcript; the stored exchange keeps the full text.
	responsePreviewChars = 200
)

// Exchange is one query/response pair plus the sources used to produce the
// response. Immutable once appended.
type Exchange struct {
	Timestamp time.Time         `json:"timestamp"`
	Query     string            `json:"query"`
	Response  string            `json:"response"`
	Sources   []store.SourceRef `json:"sources"`
}

// Mirror receives exchanges for best-effort durable persistence. Failures
// are the mirror's problem; they never reach the in-memory history.
type Mirror interface {
	PublishExchange(userID string, ex Exchange) error
}

// Options configures a History.
type Options struct {
	MaxHistory int
	Mirror     Mirror
	Logger     *log.Logger
}

// History is the bounded short-term dialogue memory for one user session.
// All methods are safe for concurrent use; concurrent AddExchange calls for
// the same session serialize on the internal mutex, last writer wins.
type History struct {
	mu         sync.Mutex
	userID     string
	maxHistory int
	exchanges  []Exchange
	mirror     Mirror
	logger     *log.Logger
}

// NewHistory creates an empty history bound to userID. An empty userID gets
// a generated timestamp token, matching the widget's anonymous sessions.
func NewHistory(userID string, opts Options) *History {
	if userID == "" {
		userID = fmt.Sprintf("user_%d", time.Now().Unix())
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &History{
		userID:     userID,
		maxHistory: maxHistory,
		mirror:     opts.Mirror,
		logger:     logger,
	}
}

func (h *History) UserID() string {
	return h.userID
}

// AddExchange appends an exchange, evicting the oldest entry (FIFO) once the
// window is full. The durable mirror write happens off the caller's path and
// its outcome is not observable here.
func (h *History) AddExchange(query, response string, sources []store.SourceRef) {
	ex := Exchange{
		Timestamp: time.Now(),
		Query:     query,
		Response:  response,
		Sources:   sources,
	}

	h.mu.Lock()
	h.exchanges = append(h.exchanges, ex)
	if len(h.exchanges) > h.maxHistory {
		h.exchanges = h.exchanges[len(h.exchanges)-h.maxHistory:]
	}
	h.mu.Unlock()

	if h.mirror != nil {
		go func() {
			if err := h.mirror.PublishExchange(h.userID, ex); err != nil {
				h.logger.Printf("[WARN] History mirror publish failed for %s: %v", h.userID, err)
			}
		}()
	}
}

// Context renders the retained exchanges into prompt-ready text. Returns ""
// for an empty history. The result never exceeds maxChars plus the
// truncation marker.
func (h *History) Context(maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultContextMaxChars
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.exchanges) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(constant.ConversationContextHeader)
	for i, ex := range h.exchanges {
		b.WriteString(fmt.Sprintf("%d. Usuario: %s\n", i+1, ex.Query))
		b.WriteString(fmt.Sprintf("   Asistente: %s\n", previewResponse(ex.Response)))
	}

	context := b.String()
	if runes := []rune(context); len(runes) > maxChars {
		context = string(runes[:maxChars]) + constant.ConversationTruncationMark
	}
	return context
}

// FullHistory returns a copy of the retained exchanges, most-recent-last.
func (h *History) FullHistory() []Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Exchange, len(h.exchanges))
	copy(out, h.exchanges)
	return out
}

// Clear empties the in-memory window. Mirrored exchanges in durable storage
// are not touched.
func (h *History) Clear() {
	h.mu.Lock()
	h.exchanges = nil
	h.mu.Unlock()
}

func previewResponse(response string) string {
	runes := []rune(response)
	if len(runes) <= responsePreviewChars {
		return response
	}
	return string(runes[:responsePreviewChars]) + "..."
}
