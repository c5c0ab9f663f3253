package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/infra/memory"
	pgloader "github.com/StruginiCrew/odyssey/internal/infra/postgres"
	infraredis "github.com/StruginiCrew/odyssey/internal/infra/redis"
	"github.com/StruginiCrew/odyssey/internal/input"
	"github.com/StruginiCrew/odyssey/internal/view"
	pgmigrations "github.com/StruginiCrew/odyssey/migrations"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuiz(t, ctx, pgURL, sampleDefinition())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	definitions := infraredis.NewDefinitionRepository(redisClient, pgloader.NewDefinitionLoader(pool), 5*time.Minute)
	logs := pgloader.NewEventLogStore(pool)
	service := app.NewService(memory.NewSessionStore(), definitions, logs)

	session, err := service.StartSession(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	qv, err := service.SelectAnswers(ctx, session.ID(), 1, []int{2})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if qv.Status != view.QuestionStatusAnsweredCorrectly {
		t.Fatalf("expected answeredCorrectly, got %s", qv.Status)
	}
	if _, err := service.InputAnswers(ctx, session.ID(), 2, []string{"some feedback"}); err != nil {
		t.Fatalf("input: %v", err)
	}

	before, err := service.QuizView(ctx, session.ID())
	if err != nil {
		t.Fatalf("quiz view: %v", err)
	}

	// Resume from the log persisted in Postgres and check the state survives.
	service.EndSession(ctx, session.ID())
	resumed, err := service.ResumeSession(ctx, "quiz-1", session.ID())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	after, err := service.QuizView(ctx, resumed.ID())
	if err != nil {
		t.Fatalf("quiz view: %v", err)
	}
	if len(after.Sections) != len(before.Sections) || after.Status != before.Status {
		t.Fatalf("resumed view differs: before=%+v after=%+v", before, after)
	}

	log, err := logs.Load(ctx, session.ID())
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if log.Generation() != 2 {
		t.Fatalf("expected 2 persisted events, got %d", log.Generation())
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, dsn string, quiz input.Quiz) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (uid, data) VALUES (?, ?::jsonb) ON CONFLICT (uid) DO UPDATE SET data=EXCLUDED.data`, quiz.UID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleDefinition() input.Quiz {
	minAnswered := 3
	return input.Quiz{
		UID:                  "quiz-1",
		Version:              1,
		Mode:                 input.QuizModeOpen,
		MinAnsweredQuestions: &minAnswered,
		Sections: []input.Section{
			{
				ID: 1,
				Questions: []input.Question{
					{
						ID:                1,
						Content:           "What is 2 + 2?",
						Mode:              input.QuestionModeSelect,
						CorrectEntryMatch: &input.EntryMatch{ID: []int{2}},
						Answers: []input.Answer{
							{ID: 1, Content: "3"},
							{ID: 2, Content: "4"},
							{ID: 3, Content: "5"},
						},
					},
					{
						ID:      2,
						Content: "Any feedback?",
						Mode:    input.QuestionModeInput,
					},
					{
						ID:      3,
						Content: "Anything else?",
						Mode:    input.QuestionModeInput,
					},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
