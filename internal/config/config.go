package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Chatbot  ChatbotConfig
	Shopify  ShopifyConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Enabled    bool
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	TeamEmail  string
}

type APIKeys struct {
	Anthropic   string
	Mistral     string
	MirrorTopic string // Conversation mirror topic
}

type ChatbotConfig struct {
	LLMProvider        string // "anthropic"
	LLMModel           string // e.g. "claude-sonnet-4-20250514"
	EmbeddingModel     string
	MistralBaseURL     string
	ProductIndexTable  string
	ConvIndexTable     string
	FeedbackIndexTable string
	TopK               int
	RelevanceThreshold float64
	MaxHistory         int
	FeedbackFile       string
	TicketsFile        string
}

type ShopifyConfig struct {
	StoreURL    string
	AccessToken string
	APIVersion  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Enabled:    getEnvAsBool("SUPPORT_EMAIL_ENABLED", false),
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Masa Madre Monterrey"),
			TeamEmail:  getEnv("SUPPORT_EMAIL_RECIPIENT", ""),
		},
		Keys: APIKeys{
			Anthropic:   getEnv("ANTHROPIC_API_KEY", ""),
			Mistral:     getEnv("MISTRAL_API_KEY", ""),
			MirrorTopic: getEnv("CONVERSATION_MIRROR_TOPIC_NAME", "MIRROR_CONVERSATION_EXCHANGE"),
		},
		Chatbot: ChatbotConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "anthropic"),
			LLMModel:           getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "mistral-embed"),
			MistralBaseURL:     getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
			ProductIndexTable:  getEnv("PRODUCT_INDEX_TABLE", "product_vectors"),
			ConvIndexTable:     getEnv("CONVERSATION_INDEX_TABLE", "conversation_vectors"),
			FeedbackIndexTable: getEnv("FEEDBACK_INDEX_TABLE", "feedback_vectors"),
			TopK:               getEnvAsInt("RETRIEVAL_TOP_K", 3),
			RelevanceThreshold: getEnvAsFloat("PRODUCT_RELEVANCE_THRESHOLD", 0.80),
			MaxHistory:         getEnvAsInt("CONVERSATION_MAX_HISTORY", 5),
			FeedbackFile:       getEnv("FEEDBACK_FILE", "chatbot_feedback.json"),
			TicketsFile:        getEnv("TICKETS_FILE", "support_tickets.json"),
		},
		Shopify: ShopifyConfig{
			StoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
			AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2023-10"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
