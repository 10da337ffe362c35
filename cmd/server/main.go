package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jiwoolee/maru/internal/cache"
	"github.com/jiwoolee/maru/internal/config"
	"github.com/jiwoolee/maru/internal/database"
	postgresrepo "github.com/jiwoolee/maru/internal/repository/postgres"
	"github.com/jiwoolee/maru/internal/service"
	"github.com/jiwoolee/maru/internal/transport/http/handlers"
	"github.com/jiwoolee/maru/internal/transport/http/middleware"
	"github.com/jiwoolee/maru/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Database
	if err := database.Migrate(cfg); err != nil {
		log.Fatal().Err(err).Msg("running migrations")
	}
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	// Adjacency cache. The edge table stays authoritative, so a dead
	// Redis only costs us the fast counts.
	neighborCache := cache.NewNeighborCache(cfg.Redis.Addr)
	defer neighborCache.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := neighborCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, neighbor counts fall back to sql")
		}
		cancel()
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	profileRepo := postgresrepo.NewProfileRepo(pool)
	neighborRepo := postgresrepo.NewNeighborRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)

	// WebSocket hub for neighbor news
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)

	// Services
	authService := service.NewAuthService(userRepo, profileRepo, cfg.JWT.Secret)
	profileService := service.NewProfileService(profileRepo, userRepo)
	neighborService := service.NewNeighborService(neighborRepo, profileRepo, neighborCache, notifier)
	visibility := service.NewVisibilityPolicy(neighborRepo)
	searchService := service.NewSearchService(profileRepo, postRepo, visibility)
	postService := service.NewPostService(postRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	neighborHandler := handlers.NewNeighborHandler(neighborService)
	searchHandler := handlers.NewSearchHandler(searchService)
	postHandler := handlers.NewPostHandler(postService)

	auth := middleware.Auth(cfg.JWT.Secret)
	optAuth := middleware.OptionalAuth(cfg.JWT.Secret)

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Auth
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Profiles
	mux.Handle("GET /profile/me/{$}", auth(http.HandlerFunc(profileHandler.Me)))
	mux.Handle("PATCH /profile/me/{$}", auth(http.HandlerFunc(profileHandler.UpdateMe)))
	mux.Handle("GET /profile/{urlname}/{$}", http.HandlerFunc(profileHandler.Public))

	// Neighbor lifecycle
	mux.Handle("POST /neighbors/{urlname}/{$}", auth(http.HandlerFunc(neighborHandler.Request)))
	mux.Handle("GET /neighbors/requests/me", auth(http.HandlerFunc(neighborHandler.Incoming)))
	mux.Handle("PUT /neighbors/accept/{urlname}/{$}", auth(http.HandlerFunc(neighborHandler.Accept)))
	mux.Handle("DELETE /neighbors/reject/{urlname}/{$}", auth(http.HandlerFunc(neighborHandler.Reject)))
	mux.Handle("GET /profile/{urlname}/neighbors/{$}", http.HandlerFunc(neighborHandler.PublicList))
	mux.Handle("GET /profile/me/neighbors/{$}", auth(http.HandlerFunc(neighborHandler.MyList)))
	mux.Handle("DELETE /profile/me/neighbors/{urlname}/{$}", auth(http.HandlerFunc(neighborHandler.Remove)))
	mux.Handle("GET /neighbors/count/{urlname}/{$}", optAuth(http.HandlerFunc(neighborHandler.Count)))

	// Search
	mux.Handle("GET /search/blog/{$}", optAuth(http.HandlerFunc(searchHandler.Blog)))
	mux.Handle("GET /search/global-blog/{$}", optAuth(http.HandlerFunc(searchHandler.GlobalBlogs)))
	mux.Handle("GET /search/global-nickandid/{$}", optAuth(http.HandlerFunc(searchHandler.GlobalUsers)))
	mux.Handle("GET /search/global-post/{$}", optAuth(http.HandlerFunc(searchHandler.GlobalPosts)))

	// Posts
	mux.Handle("POST /posts/me/create/{$}", auth(http.HandlerFunc(postHandler.Create)))

	// WebSocket news feed
	mux.Handle("GET /ws", ws.ServeWS(hub, cfg.JWT.Secret))

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, corsWrapper.Handler(mux)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
