package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "cf_bridge/api/v1"
	"cf_bridge/internal/auth"
	"cf_bridge/internal/cache"
	"cf_bridge/internal/config"
	"cf_bridge/internal/credential"
	"cf_bridge/internal/db"
	"cf_bridge/internal/events"
	"cf_bridge/internal/notify"
	"cf_bridge/internal/secret"
	"cf_bridge/internal/service"
	"cf_bridge/internal/warming"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration (INI file when CONFIG_INI is set, env otherwise)
	var cfg *config.Config
	var err error
	if iniPath := os.Getenv("CONFIG_INI"); iniPath != "" {
		cfg, err = config.LoadFromINI(iniPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("✓ Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.GetDB()); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 4. Auth and token cipher
	auth.InitJWT(cfg.JWT.Secret)

	cipher, err := secret.NewAESCipher(cfg.Secret.CipherKey)
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}

	// 5. Socket.IO push server
	if err := notify.InitServer(); err != nil {
		log.Fatalf("Failed to initialize Socket.IO server: %v", err)
	}
	defer notify.Close()
	publisher := notify.NewPublisher()

	// 6. Credential store and Cloudflare-backed services
	exchange := credential.NewRedisExchangeStore(cache.Client)
	creds := credential.NewStore(db.GetDB(), exchange, cipher, cfg.SSO)

	cacheSvc := service.NewCacheService(db.GetDB(), creds, cache.Client, publisher)
	dnsSvc := service.NewDNSService(db.GetDB(), creds)
	securitySvc := service.NewSecurityService(db.GetDB(), creds)
	sslSvc := service.NewSSLService(db.GetDB(), creds)
	workersSvc := service.NewWorkersService(db.GetDB(), creds)
	r2Svc := service.NewR2Service(db.GetDB(), creds)
	d1Svc := service.NewD1Service(creds)
	streamSvc := service.NewStreamService(creds)
	analyticsSvc := service.NewAnalyticsService(db.GetDB(), creds)
	pageRulesSvc := service.NewPageRulesService(db.GetDB(), creds)
	zoneSetSvc := service.NewZoneSettingsService(creds)
	settingsSvc := service.NewSettingsService(db.GetDB())

	// 7. Background workers
	var purgeWorker *events.Worker
	if cfg.AutoPurge.Enabled {
		purgeWorker = events.NewWorker(cacheSvc, settingsSvc, cfg.AutoPurge.QueueSize)
		purgeWorker.Start()
		defer purgeWorker.Stop()
		log.Println("✓ Auto-purge worker started")
	}

	var warmer *warming.Warmer
	if cfg.Warming.Enabled {
		content := warming.NewSitemapSource(cfg.SiteURL)
		warmer = warming.New(content, settingsSvc, cfg.Warming)
		log.Println("✓ Cache warmer enabled")
	}

	// 8. HTTP router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, &v1.Deps{
		DB:          db.GetDB(),
		Config:      cfg,
		Credentials: creds,
		Cache:       cacheSvc,
		DNS:         dnsSvc,
		Security:    securitySvc,
		SSL:         sslSvc,
		Workers:     workersSvc,
		R2:          r2Svc,
		D1:          d1Svc,
		Stream:      streamSvc,
		Analytics:   analyticsSvc,
		PageRules:   pageRulesSvc,
		ZoneSet:     zoneSetSvc,
		Settings:    settingsSvc,
		Notifier:    publisher,
		AutoPurge:   purgeWorker,
		Warmer:      warmer,
	})

	// Socket.IO endpoint (JWT-guarded handshake)
	r.Any("/socket.io/*any", gin.WrapH(notify.WrapWithAuth(notify.Server)))

	// 9. Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("✓ Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
