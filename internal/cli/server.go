package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	inframinio "livequiz-service/internal/infra/minio"
	"livequiz-service/internal/infra/memory"
	pgstore "livequiz-service/internal/infra/postgres"
	redisinfra "livequiz-service/internal/infra/redis"
	"livequiz-service/internal/logging"
	transport "livequiz-service/internal/transport/http"
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

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		log.Info("migrations applied")
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	questionTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Durable question/quiz storage falls back to memory when Postgres is
	// not configured (demo and test runs).
	var questions app.QuestionRepository = memory.NewQuestionStore()
	var quizzes app.QuizRepository = memory.NewQuizStore()
	if pool != nil {
		questions = pgstore.NewQuestionStore(pool)
		quizzes = pgstore.NewQuizStore(pool)
	}

	var (
		control      app.ControlRepository
		ledger       app.AnswerLedger
		participants app.ParticipantRegistry
		sessions     app.SessionRepository
	)
	if redisClient != nil {
		control = redisinfra.NewControlStore(redisClient)
		ledger = redisinfra.NewAnswerLedger(redisClient)
		participants = redisinfra.NewParticipantRegistry(redisClient)
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
		questions = redisinfra.NewQuestionCache(redisClient, questions, questionTTL)
	} else {
		control = memory.NewControlStore()
		ledger = memory.NewAnswerLedger()
		participants = memory.NewParticipantRegistry()
		sessions = memory.NewSessionStore()
	}

	service := app.NewQuizService(control, questions, quizzes, ledger, participants, sessions, log)

	var imageStore *inframinio.ImageStore
	if cfg.Storage.Endpoint != "" {
		imageStore, err = inframinio.NewImageStore(inframinio.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return err
		}
		if err := imageStore.EnsureBucket(ctx); err != nil {
			return err
		}
		service.WithImageStore(imageStore)
	}

	participantWS := transport.NewParticipantHandler(service, log)
	hostWS := transport.NewHostHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws/participant", participantWS.ServeWS)
	mux.HandleFunc("/ws/host", hostWS.ServeWS)
	if imageStore != nil {
		mux.Handle("/images", transport.NewImageHandler(imageStore, log))
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting livequiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
