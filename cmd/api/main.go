package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ixnv/anon-fl-api/internal/config"
	"github.com/ixnv/anon-fl-api/internal/db"
	internalhttp "github.com/ixnv/anon-fl-api/internal/http"
	"github.com/ixnv/anon-fl-api/internal/notify"
	"github.com/ixnv/anon-fl-api/internal/services"
	"github.com/ixnv/anon-fl-api/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log = log.Level(level)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	st := store.New(pool)
	gateway := notify.NewClient(cfg.Notify.BaseURL,
		time.Duration(cfg.Notify.TimeoutSeconds)*time.Second, log)
	feed := services.NewChatFeed()
	pageSize := cfg.Pagination.PageSize

	accounts := services.NewAccountService(st, gateway, cfg.Auth.JWTSecret, log)
	orders := services.NewOrderService(st, pageSize, log)
	applications := services.NewApplicationService(st, gateway, log)
	chats := services.NewChatService(st, gateway, feed, pageSize, log)
	categories := services.NewCategoryService(st, log)
	tags := services.NewTagService(st, log)

	h := internalhttp.NewHandler(accounts, orders, applications, chats, categories, tags, feed, log)
	srv := internalhttp.NewServer(h)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("api listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
