package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"qquiz-service/internal/app"
	"qquiz-service/internal/auth"
	"qquiz-service/internal/config"
	"qquiz-service/internal/grading"
	"qquiz-service/internal/infra/memory"
	"qquiz-service/internal/infra/postgres"
	rediscache "qquiz-service/internal/infra/redis"
	transport "qquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// storage groups the persistence roles the services depend on.
type storage struct {
	quizzes app.QuizStore
	ledger  app.ResultLedger
	users   app.UserRepository
	loader  memory.QuizLoader
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.Postgres.URL == "" {
		store := memory.NewStore()
		return storage{quizzes: store, ledger: store, users: store, loader: store, close: func() {}}, nil
	}

	db, err := openBun(cfg)
	if err != nil {
		return storage{}, err
	}
	if err := migrateDB(ctx, db); err != nil {
		db.Close()
		return storage{}, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return storage{}, err
	}
	store := postgres.NewStore(db)
	return storage{
		quizzes: store,
		ledger:  store,
		users:   store,
		loader:  postgres.NewQuizLoader(pool),
		close: func() {
			pool.Close()
			db.Close()
		},
	}, nil
}

func newCatalog(cfg config.Config, loader memory.QuizLoader) (app.QuizCatalog, func()) {
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		return memory.NewQuizRepository(loader, quizTTL), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return rediscache.NewQuizRepository(client, loader, quizTTL), func() { client.Close() }
}

func newTokens(cfg config.Config) (*auth.Tokens, error) {
	secret := cfg.Auth.Secret
	if secret == "" {
		if cfg.Postgres.URL != "" {
			return nil, errors.New("auth secret not configured")
		}
		secret = uuid.NewString()
		log.Printf("auth secret not configured, using an ephemeral one")
	}
	return auth.NewTokens(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)), nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	tokens, err := newTokens(cfg)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	catalog, closeCatalog := newCatalog(cfg, store.loader)
	defer closeCatalog()

	feed := app.NewResultFeed()
	quizzes := app.NewQuizService(store.quizzes, catalog)
	submissions := app.NewSubmissionService(catalog, store.ledger, feed, grading.NormalizeOptions{
		RequireAnswer: cfg.Grading.RequireAnswer,
	})
	users := app.NewUserService(store.users, cfg.Auth.BcryptCost)

	if cfg.Postgres.URL == "" {
		if err := seedDemo(ctx, users, quizzes, tokens); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.Services{
			Quizzes:     quizzes,
			Submissions: submissions,
			Users:       users,
			Tokens:      tokens,
		}),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
