package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/config"
	"github.com/StruginiCrew/odyssey/internal/infra/memory"
	pgstore "github.com/StruginiCrew/odyssey/internal/infra/postgres"
	redisstore "github.com/StruginiCrew/odyssey/internal/infra/redis"
	"github.com/StruginiCrew/odyssey/internal/input"
	transport "github.com/StruginiCrew/odyssey/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz runner server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.DefinitionLoader = memory.NewStaticDefinitionLoader(sampleDefinitions())
	if pool != nil {
		loader = pgstore.NewDefinitionLoader(pool)
	}

	definitionTTL := config.TTLDuration(cfg.Definition.TTL, 10*time.Minute)
	var definitions app.DefinitionRepository
	if redisClient != nil {
		definitions = redisstore.NewDefinitionRepository(redisClient, loader, definitionTTL)
	} else {
		definitions = memory.NewDefinitionRepository(loader, definitionTTL)
	}

	eventLogTTL := config.TTLDuration(cfg.EventLog.TTL, 24*time.Hour)
	var logs app.EventLogStore
	switch {
	case pool != nil:
		logs = pgstore.NewEventLogStore(pool)
	case redisClient != nil:
		logs = redisstore.NewEventLogStore(redisClient, eventLogTTL)
	default:
		logs = memory.NewEventLogStore()
	}

	service := app.NewService(memory.NewSessionStore(), definitions, logs)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz runner on :%s", finalPort)
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

// sampleDefinitions seeds a minimal quiz; swap the loader for the
// Postgres-backed one in production.
func sampleDefinitions() map[string]input.Quiz {
	title := "Demo quiz"
	return map[string]input.Quiz{
		"demo-quiz": {
			UID:     "demo-quiz",
			Version: 1,
			Title:   &title,
			Mode:    input.QuizModeOpen,
			Sections: []input.Section{
				{
					ID: 1,
					Questions: []input.Question{
						{
							ID:      1,
							Content: "What is 2 + 2?",
							Mode:    input.QuestionModeSelect,
							CorrectEntryMatch: &input.EntryMatch{
								ID: []int{2},
							},
							Answers: []input.Answer{
								{ID: 1, Content: "3"},
								{ID: 2, Content: "4"},
								{ID: 3, Content: "5"},
							},
						},
					},
				},
			},
		},
	}
}
