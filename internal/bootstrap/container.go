package bootstrap

import (
	"context"
	"log"

	"ai-butler-be/internal/config"
	"ai-butler-be/internal/controller"
	"ai-butler-be/internal/pkg/logger"
	"ai-butler-be/internal/pkg/mailer"
	"ai-butler-be/internal/profile"
	"ai-butler-be/internal/repository/memory"
	"ai-butler-be/internal/repository/unitofwork"
	"ai-butler-be/internal/service"
	"ai-butler-be/internal/websocket"
	"ai-butler-be/pkg/assistant/distill"
	"ai-butler-be/pkg/embedding"
	"ai-butler-be/pkg/googleapi"
	"ai-butler-be/pkg/llm/factory"
	"ai-butler-be/pkg/speech"
	"ai-butler-be/pkg/websearch"

	pktNats "ai-butler-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	AssistantController controller.IAssistantController
	StreamController    *controller.StreamController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := buildSMTP(cfg)

	// 2. Event bus (in-process, carries the post-turn distill queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	keys := factory.Keys{
		OpenAI:        cfg.Keys.OpenAI,
		Groq:          cfg.Keys.Groq,
		Anthropic:     cfg.Keys.Anthropic,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	}

	chatProvider, err := factory.NewProvider(cfg.Ai.ChatModel, keys)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize chat model: %v", err)
	}
	intentProvider, err := factory.NewProvider(cfg.Ai.IntentModel, keys)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize intent model: %v", err)
	}
	distillProvider, err := factory.NewProvider(cfg.Ai.DistillModel, keys)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize distill model: %v", err)
	}
	log.Printf("[INFO] Models: chat=%s intent=%s distill=%s", cfg.Ai.ChatModel, cfg.Ai.IntentModel, cfg.Ai.DistillModel)

	speechClient := buildSpeech(cfg)

	// 4. Persona & profile
	persona, err := profile.LoadPersona(cfg.Assistant.PersonaFile)
	if err != nil {
		log.Printf("[WARN] Failed to load persona, using default: %v", err)
		persona = profile.DefaultPersona
	}
	userProfile, err := profile.LoadProfile(cfg.Assistant.ProfileFile)
	if err != nil {
		log.Printf("[WARN] Failed to load profile: %v", err)
	}

	// 5. Session storage
	sessionRepo := memory.NewSessionRepository()

	// 6. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 7. Google surfaces
	var gmailClient service.IGmailClient
	var calendarClient service.ICalendarClient
	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		google := googleapi.NewClient(googleapi.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			TokenFile:    cfg.Google.TokenFile,
			ZoomRoomURL:  cfg.Google.ZoomRoomURL,
			Timezone:     cfg.Google.Timezone,
		})
		gmailClient = google
		calendarClient = google
	} else {
		log.Printf("[WARN] Google OAuth not configured, gmail and calendar commands disabled")
	}

	webClient := websearch.NewClient(cfg.Google.APIKey, cfg.Google.CSEID)

	// 8. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Assistant.DistillTopicName)
	noteService := service.NewNoteService(uowFactory, embeddingProvider, chatProvider, natsPub)
	documentService := service.NewDocumentService(
		uowFactory,
		embeddingProvider,
		chatProvider,
		natsPub,
		cfg.Assistant.DocumentDir,
		"uploads",
	)
	mailService := service.NewMailService(gmailClient, emailService, natsPub)
	calendarService := service.NewCalendarService(calendarClient, natsPub)
	authService := service.NewAuthService(cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.Auth.JwtSecret)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Assistant.DistillTopicName,
		noteService,
		distill.NewDistiller(distillProvider),
		cfg.Assistant.NoteTopK,
	)

	assistantService := service.NewAssistantService(service.AssistantDeps{
		Logger:          sysLogger,
		Zap:             sysLogger.Zap(),
		SessionRepo:     sessionRepo,
		ChatProvider:    chatProvider,
		IntentProvider:  intentProvider,
		Persona:         persona,
		Profile:         userProfile,
		NoteService:     noteService,
		DocumentService: documentService,
		MailService:     mailService,
		CalendarService: calendarService,
		Web:             webClient,
		Speech:          speechClient,
		Publisher:       publisherService,
		Delivery:        wsHub,
		NoteTopK:        cfg.Assistant.NoteTopK,
		TranscribeModel: cfg.Ai.TranscribeModel,
		SynthesisModel:  cfg.Ai.SynthesisModel,
		SynthesisVoice:  cfg.Ai.SynthesisVoice,
	})

	notificationService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notificationService.Start()
	}

	// 9. Controllers
	return &Container{
		AuthController:      controller.NewAuthController(authService),
		AssistantController: controller.NewAssistantController(assistantService),
		StreamController:    controller.NewStreamController(wsHub, cfg.Auth.JwtSecret, wsLogger),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}

func buildSMTP(cfg *config.Config) mailer.IEmailService {
	if cfg.SMTP.Host == "" {
		return nil
	}
	return mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)
}

func buildSpeech(cfg *config.Config) *speech.Client {
	if cfg.Ai.SpeechProvider == "" {
		return nil
	}
	apiKey := cfg.Keys.OpenAI
	if cfg.Ai.SpeechProvider == "groq" {
		apiKey = cfg.Keys.Groq
	}
	client, err := speech.NewClient(cfg.Ai.SpeechProvider, apiKey)
	if err != nil {
		log.Printf("[WARN] Speech disabled: %v", err)
		return nil
	}
	return client
}
