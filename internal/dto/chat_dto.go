package dto

import (
	"bakery-support-be/pkg/store"
	"bakery-support-be/pkg/support"
)

type InitChatRequest struct {
	UserID string `json:"user_id"`
}

type InitChatResponse struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	WelcomeMessage string `json:"welcome_message"`
}

type ChatMessageRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type ChatMessageResponse struct {
	Response       string            `json:"response"`
	Sources        []store.SourceRef `json:"sources"`
	UserID         string            `json:"user_id"`
	Provider       string            `json:"provider"`
	DetectedIntent string            `json:"detected_intent,omitempty"`
	ErrorFlag      bool              `json:"error_flag,omitempty"`
	ErrorType      string            `json:"error_type,omitempty"`
}

type ChatFeedbackRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ChatSupportRequest struct {
	UserID      string              `json:"user_id" validate:"required"`
	ContactInfo support.ContactInfo `json:"contact_info" validate:"required"`
}

type ChatSupportResponse struct {
	TicketID string `json:"ticket_id"`
	Message  string `json:"message"`
}

type ProductSearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k"`
}

type ProductSearchResult struct {
	ID       string                `json:"id"`
	Score    float64               `json:"score"`
	Metadata ProductSearchMetadata `json:"metadata"`
}

type ProductSearchMetadata struct {
	Title         string             `json:"title"`
	URL           string             `json:"url"`
	Price         string             `json:"price"`
	Availability  string             `json:"availability"`
	SaleInfo      []store.SaleRecord `json:"sale_info"`
	HasActiveSale bool               `json:"has_active_sale"`
}

type FeedbackSummaryResponse struct {
	TotalFeedback        int                   `json:"total_feedback"`
	AverageRating        float64               `json:"average_rating"`
	LowRatings           int                   `json:"low_ratings"`
	LowRatingsPercentage float64               `json:"low_ratings_percentage"`
	RecentFeedback       []RecentFeedbackEntry `json:"recent_feedback"`
}

type RecentFeedbackEntry struct {
	Timestamp string `json:"timestamp"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}
