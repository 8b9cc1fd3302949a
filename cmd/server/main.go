package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipmemo-sync-server/internal/config"
	"clipmemo-sync-server/internal/domain"
	"clipmemo-sync-server/internal/handler"
	"clipmemo-sync-server/internal/middleware"
	"clipmemo-sync-server/internal/repository"
	"clipmemo-sync-server/internal/service"
	"clipmemo-sync-server/internal/template"
	"clipmemo-sync-server/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	deviceRepo := repository.NewDeviceRepository(client, cfg.Database.Name)
	memoRepo := repository.NewMemoRepository(client, cfg.Database.Name)
	clipRepo := repository.NewClipRepository(client, cfg.Database.Name)
	tokenRepo := repository.NewExtensionTokenRepository(client, cfg.Database.Name)

	baseURL := fmt.Sprintf("%s/%s", couchURL, cfg.Database.Name)
	versionRepo := repository.NewMemoVersionRepository(baseURL)
	syncMetadataRepo := repository.NewSyncMetadataRepository(baseURL)
	valueHistoryRepo := repository.NewValueHistoryRepository(baseURL)

	// WebSocket Manager
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	engine := template.NewEngine(valueHistoryRepo, nil, cfg.Template.HistoryLimit)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	userService := service.NewUserService(userRepo)
	deviceService := service.NewDeviceService(deviceRepo)
	tokenService := service.NewExtensionTokenService(tokenRepo, userRepo)

	syncService := service.NewSyncService(memoRepo, syncMetadataRepo, wsManager)
	memoService := service.NewMemoService(memoRepo, versionRepo, engine, syncService)
	clipboardService := service.NewClipboardService(clipRepo, cfg.Clipboard.TemporaryRetention, syncService)
	templateService := service.NewTemplateService(engine)

	wsMessageHandler := handler.NewWebSocketMessageHandler(syncService)
	wsManager.SetMessageHandler(wsMessageHandler)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	memoHandler := handler.NewMemoHandler(memoService)
	clipHandler := handler.NewClipHandler(clipboardService)
	templateHandler := handler.NewTemplateHandler(templateService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)
	syncHandler := handler.NewSyncHandler(syncService)
	tokenHandler := handler.NewExtensionTokenHandler(tokenService)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	api.HandleFunc("/extension/login", tokenHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/extension/validate", tokenHandler.Validate).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/users/me", userHandler.GetMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/extension/tokens", tokenHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/extension/tokens", tokenHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/extension/tokens/{id}", tokenHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/extension/tokens/{id}/revoke", tokenHandler.Revoke).Methods("POST", "OPTIONS")
	protected.HandleFunc("/extension/tokens/{id}", tokenHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/devices", deviceHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/devices/register", deviceHandler.Register).Methods("POST", "OPTIONS")
	protected.HandleFunc("/devices/{id}", deviceHandler.Revoke).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/memos", memoHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/memos", memoHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/memos/{id}", memoHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/memos/{id}", memoHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/memos/{id}", memoHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/memos/{id}/favorite", memoHandler.Favorite).Methods("POST", "OPTIONS")
	protected.HandleFunc("/memos/{id}/touch", memoHandler.Touch).Methods("POST", "OPTIONS")
	protected.HandleFunc("/memos/{id}/render", memoHandler.Render).Methods("POST", "OPTIONS")
	protected.HandleFunc("/memos/{id}/placeholders", memoHandler.Placeholders).Methods("GET", "OPTIONS")
	protected.HandleFunc("/memos/{id}/versions", memoHandler.Versions).Methods("GET", "OPTIONS")

	protected.HandleFunc("/clips", clipHandler.Record).Methods("POST", "OPTIONS")
	protected.HandleFunc("/clips", clipHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/clips/prune", clipHandler.Prune).Methods("POST", "OPTIONS")
	protected.HandleFunc("/clips/{id}", clipHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/clips/{id}/correct", clipHandler.Correct).Methods("POST", "OPTIONS")
	protected.HandleFunc("/clips/{id}/suggest-memo", clipHandler.SuggestMemo).Methods("GET", "OPTIONS")

	protected.HandleFunc("/tools/extract", templateHandler.Extract).Methods("POST", "OPTIONS")
	protected.HandleFunc("/tools/substitute", templateHandler.Substitute).Methods("POST", "OPTIONS")
	protected.HandleFunc("/tools/values", templateHandler.CommitValue).Methods("POST", "OPTIONS")
	protected.HandleFunc("/tools/values", templateHandler.History).Methods("GET", "OPTIONS")
	protected.HandleFunc("/tools/classify", templateHandler.Classify).Methods("POST", "OPTIONS")

	protected.HandleFunc("/sync/request", syncHandler.ProcessSync).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/changes", syncHandler.GetChanges).Methods("GET", "OPTIONS")

	// These routes use extension tokens (cmk_xxxxx) instead of JWT
	extProtected := api.PathPrefix("/ext").Subrouter()
	extProtected.Use(middleware.ExtensionAuthMiddleware(tokenService))
	extProtected.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(string)
		scopes := r.Context().Value("extension_scopes").([]string)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Extension authentication successful",
			"user_id": userID,
			"scopes":  scopes,
		})
	}).Methods("GET", "OPTIONS")

	extMemos := extProtected.PathPrefix("/memos").Subrouter()
	extMemos.Use(middleware.ExtensionScopeMiddleware(domain.ScopeMemosRead))
	extMemos.Handle("", extensionHandler(memoHandler.List)).Methods("GET", "OPTIONS")
	extMemos.Handle("/{id}", extensionHandler(memoHandler.Get)).Methods("GET", "OPTIONS")

	extRender := extProtected.PathPrefix("/render").Subrouter()
	extRender.Use(middleware.ExtensionScopeMiddleware(domain.ScopeMemosRender))
	extRender.Handle("/{id}", extensionHandler(memoHandler.Render)).Methods("POST", "OPTIONS")

	extClips := extProtected.PathPrefix("/clips").Subrouter()
	extClips.Use(middleware.ExtensionScopeMiddleware(domain.ScopeClipsWrite))
	extClips.Handle("", extensionHandler(clipHandler.Record)).Methods("POST", "OPTIONS")

	extValues := extProtected.PathPrefix("/values").Subrouter()
	extValues.Use(middleware.ExtensionScopeMiddleware(domain.ScopeValuesRead))
	extValues.Handle("", extensionHandler(templateHandler.History)).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	// Health endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	// Background prune of expired temporary clips.
	pruneCtx, pruneCancel := context.WithCancel(context.Background())
	defer pruneCancel()
	go runClipPruner(pruneCtx, clipboardService, userService, cfg.Clipboard.PruneInterval)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting ClipMemo Sync Server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	pruneCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// extensionHandler adapts a JWT-protected handler so it also works behind
// the extension token middleware, which stores the user id under a plain
// string key.
func extensionHandler(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := r.Context().Value("user_id").(string); ok {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			r = r.WithContext(ctx)
		}
		next(w, r)
	})
}

func runClipPruner(ctx context.Context, clips *service.ClipboardService, users *service.UserService, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			userIDs, err := users.ListIDs()
			if err != nil {
				log.Printf("clip pruner: failed to list users: %v", err)
				continue
			}
			for _, userID := range userIDs {
				if deleted, err := clips.Prune(userID); err != nil {
					log.Printf("clip pruner: user %s: %v", userID, err)
				} else if deleted > 0 {
					log.Printf("clip pruner: removed %d expired clips for user %s", deleted, userID)
				}
			}
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"clipmemo-sync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"ClipMemo Sync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/memos":"GET (protected)","/api/v1/clips":"GET (protected)"}}`))
}
