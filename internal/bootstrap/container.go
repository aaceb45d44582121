package bootstrap

import (
	"context"
	"log"
	"time"

	"notable-be/internal/config"
	"notable-be/internal/controller"
	"notable-be/internal/handler"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/pkg/mailer"
	"notable-be/internal/repository/unitofwork"
	"notable-be/internal/service"
	"notable-be/internal/websocket"
	"notable-be/pkg/blob"
	"notable-be/pkg/events"
	pktNats "notable-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const auditTopic = "audit_log"

type Container struct {
	// Controllers
	NoteController   controller.INoteController
	AuthController   controller.IAuthController
	UploadController controller.IUploadController
	UserController   controller.IUserController
	HealthController controller.IHealthController

	// WebSockets
	EventsHandler *handler.EventsHandler
	WebSocketHub  *websocket.Hub

	// Background Services (exposed for main.go to run)
	AuditConsumerService service.IAuditConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event infrastructure
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	dispatcher := events.NewDispatcher("notes_events")

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
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
		log.Printf("[WARN] Failed to connect to Redis: %v. Cross-instance fanout disabled", err)
		rdb = nil
	}

	// 3. Blob storage
	store := blob.NewHTTPStore(cfg.Storage.Endpoint, cfg.Storage.Token)
	extractor := blob.NewExtractor(cfg.Storage.HostSuffix)

	// 4. Audit pipeline
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	auditPublisher := service.NewAuditPublisher(pubSub, auditTopic, auditLogger)
	auditConsumer := service.NewAuditConsumerService(pubSub, auditTopic, uowFactory, auditLogger)

	// 5. Services
	blobService := service.NewBlobService(store, uowFactory, sysLogger)
	noteService := service.NewNoteService(
		uowFactory,
		blobService,
		extractor,
		dispatcher,
		natsPub,
		sysLogger,
	)
	authService := service.NewAuthService(
		uowFactory,
		emailService,
		auditPublisher,
		cfg.Auth.JwtSecret,
		time.Duration(cfg.Auth.TokenExpiryHrs)*time.Hour,
		sysLogger,
	)
	userService := service.NewUserService(uowFactory, store, emailService, auditPublisher, sysLogger)

	// 6. WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(dispatcher, rdb, wsLogger)
	go wsHub.Run(context.Background())

	return &Container{
		NoteController:   controller.NewNoteController(noteService, auditPublisher),
		AuthController:   controller.NewAuthController(authService),
		UploadController: controller.NewUploadController(blobService, auditPublisher, cfg.Storage.MaxUploadBytes, cfg.Storage.AllowedMimeTypes),
		UserController:   controller.NewUserController(userService),
		HealthController: controller.NewHealthController(),

		EventsHandler: handler.NewEventsHandler(wsHub, wsLogger),
		WebSocketHub:  wsHub,

		AuditConsumerService: auditConsumer,
	}
}
