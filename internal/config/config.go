package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Google    GoogleConfig
	Keys      APIKeys
	Ai        AIConfig
	Assistant AssistantConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret    string
	Username     string
	PasswordHash string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CSEID        string
	APIKey       string
	ZoomRoomURL  string
	Timezone     string
}

type APIKeys struct {
	OpenAI       string
	Groq         string
	Anthropic    string
	GoogleGemini string
}

type AIConfig struct {
	ChatModel         string // provider-qualified, e.g. "ollama:gemma3:latest"
	IntentModel       string
	DistillModel      string
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	SpeechProvider    string // "openai", "groq" or "" to disable
	TranscribeModel   string
	SynthesisModel    string
	SynthesisVoice    string
}

type AssistantConfig struct {
	PersonaFile      string
	ProfileFile      string
	DocumentDir      string
	NoteTopK         int
	DistillTopicName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:    getEnv("JWT_SECRET", ""),
			Username:     getEnv("AUTH_USERNAME", "butler"),
			PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Butler"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			TokenFile:    getEnv("GOOGLE_TOKEN_FILE", "data/google_token.json"),
			CSEID:        getEnv("GOOGLE_CSE_ID", ""),
			APIKey:       getEnv("GOOGLE_API_KEY", ""),
			ZoomRoomURL:  getEnv("ZOOM_ROOM_URL", ""),
			Timezone:     getEnv("CALENDAR_TIMEZONE", "Europe/Paris"),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			ChatModel:         getEnv("CHAT_MODEL", "ollama:gemma3:latest"),
			IntentModel:       getEnv("INTENT_MODEL", "ollama:gemma3:latest"),
			DistillModel:      getEnv("DISTILL_MODEL", "ollama:gemma3:latest"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			SpeechProvider:    getEnv("SPEECH_PROVIDER", ""),
			TranscribeModel:   getEnv("TRANSCRIBE_MODEL", "whisper-large-v3"),
			SynthesisModel:    getEnv("SYNTHESIS_MODEL", "playai-tts"),
			SynthesisVoice:    getEnv("SYNTHESIS_VOICE", "Atlas-PlayAI"),
		},
		Assistant: AssistantConfig{
			PersonaFile:      getEnv("PERSONA_FILE", "data/persona.json"),
			ProfileFile:      getEnv("PROFILE_FILE", "data/profile.json"),
			DocumentDir:      getEnv("DOCUMENT_DIR", "data/documents"),
			NoteTopK:         getEnvAsInt("NOTE_TOP_K", 5),
			DistillTopicName: getEnv("DISTILL_TOPIC_NAME", "DISTILL_TURN"),
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
