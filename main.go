// File: phonedesk/main.go
package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"phonedesk/config"
	"phonedesk/cron"
	"phonedesk/database"
	bookingRepo "phonedesk/database/repository/booking"
	catalogRepo "phonedesk/database/repository/catalog"
	"phonedesk/handlers"
	"phonedesk/routes"
	"phonedesk/services/call"
	"phonedesk/services/catalog"
	"phonedesk/services/flow"
	"phonedesk/services/normalizer"
	"phonedesk/services/notification"
	"phonedesk/services/responder"
	"phonedesk/services/session"
	"phonedesk/services/speech"
	"phonedesk/services/telephony"
	"phonedesk/services/transaction"
	"phonedesk/services/transcription"
	"phonedesk/services/validator"
	"phonedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		logger.Fatal("main: invalid configuration", zap.Error(err))
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	utils.InitRedis()

	// repositories.
	catalogs := catalogRepo.NewMongoCatalogRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := catalogs.EnsureIndexes(idxCtx); err != nil {
		logger.Warn("main: catalog indexes", zap.Error(err))
	}
	if err := bookings.EnsureIndexes(idxCtx); err != nil {
		logger.Warn("main: booking indexes", zap.Error(err))
	}
	cancel()

	// language pipeline.
	norm, err := normalizer.Load(cfg.DictionaryPath, logger)
	if err != nil {
		logger.Fatal("main: failed to load dictionary", zap.Error(err))
	}
	catalogProvider := catalog.NewProvider(catalogs, norm, cfg.CatalogTTL, logger)
	replies, err := responder.New(logger)
	if err != nil {
		logger.Fatal("main: failed to parse reply templates", zap.Error(err))
	}
	sessions := session.NewRedisStore(utils.GetSessionClient(), cfg.SessionTTL)

	// speech in and out.
	lang, _, _ := strings.Cut(cfg.STTLanguage, "-")
	cartesia := speech.NewCartesia(cfg.CartesiaAPIKey, cfg.TTSVoiceID, lang)
	audio := speech.NewCache(cartesia, speech.NewRedisAudioStore(utils.GetAudioClient(), cfg.AudioCacheTTL), speech.Options{
		Voice:      cartesia.Voice(),
		LocalSize:  cfg.AudioCacheSize,
		LocalTTL:   cfg.AudioCacheTTL,
		MaxRetries: 3,
	}, logger)
	stt, err := transcription.NewGoogle(ctx, cfg.GoogleServiceAccountFile, cfg.STTLanguage, logger)
	if err != nil {
		logger.Fatal("main: failed to create speech client", zap.Error(err))
	}
	defer stt.Close()

	// telephony and call endings.
	control := telephony.NewTwilioControl(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	scheduler := cron.NewScheduler(cron.RedisOpt())
	defer scheduler.Close()
	worker := cron.InitWorker(ctx, cron.RedisOpt(), control, sessions, logger)

	var notifier notification.NotificationService = notification.NoopNotificationService{}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := utils.FirebaseInit(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("main: push notifications disabled", zap.Error(err))
		} else if svc, err := notification.NewFCMNotificationService(fcm, logger); err == nil {
			notifier = svc
		}
	}

	engine := call.NewEngine(call.Deps{
		Sessions:    sessions,
		Catalogs:    catalogProvider,
		Normalizer:  norm,
		Flows:       flow.NewRegistry(validator.NewCalendar(bookings), validator.NewCatalog(), cfg.MaxRetries),
		Responder:   replies,
		Speech:      audio,
		Prewarm:     audio,
		Transcriber: stt,
		Control:     control,
		Recorder:    transaction.NewRecorder(bookings),
		Notifier:    notifier,
		Scheduler:   scheduler,
		HangupDelay: cfg.HangupDelay,
		Logger:      logger,
	})

	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetSessionClient(), utils.GetAudioClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	voiceHandler := handlers.NewVoiceHandler(catalogProvider, cfg.PublicBaseURL, logger)
	mediaHandler := handlers.NewMediaHandler(engine, logger)
	callsHandler := handlers.NewCallsHandler(sessions)
	dictionaryHandler := handlers.NewDictionaryHandler(norm, catalogProvider, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		IncomingCallHandler:     voiceHandler.IncomingCallHandler,
		MediaStreamHandler:      mediaHandler.MediaStreamHandler,
		GetCallHandler:          callsHandler.GetCallHandler,
		ReloadDictionaryHandler: dictionaryHandler.ReloadDictionaryHandler,
		TwilioAuthToken:         cfg.TwilioAuthToken,
		PublicBaseURL:           cfg.PublicBaseURL,
		AdminAPIKey:             cfg.AdminAPIKey,
		MaxRequestsPerMin:       cfg.MaxRequestsPerMin,
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
		// Media sockets outlive Shutdown; they end with the root context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.MongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
