package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/lumina-ai/rag-backend/internal/cfg"
	v1Http "github.com/lumina-ai/rag-backend/internal/delivery/v1/http"
	"github.com/lumina-ai/rag-backend/internal/infrastructure/cohere"
	"github.com/lumina-ai/rag-backend/internal/infrastructure/kafka"
	archiveInfra "github.com/lumina-ai/rag-backend/internal/infrastructure/minio"
	s3Repo "github.com/lumina-ai/rag-backend/internal/repository/minio"
	"github.com/lumina-ai/rag-backend/internal/repository/pgdb"
	pgdbConv "github.com/lumina-ai/rag-backend/internal/repository/pgdb/converter/generated"
	qdrantRepo "github.com/lumina-ai/rag-backend/internal/repository/qdrant"
	"github.com/lumina-ai/rag-backend/internal/repository/redis"
	redisConv "github.com/lumina-ai/rag-backend/internal/repository/redis/converter/generated"
	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/clients"
	"github.com/lumina-ai/rag-backend/pkg/closer"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/lumina-ai/rag-backend/pkg/logger"
	"github.com/lumina-ai/rag-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	forcedTimeout   = 2 * time.Second
)

// App связывает все слои приложения и управляет их жизненным циклом.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	worker  *kafka.OutboxWorker
	closer  *closer.Closer

	workerCtx    context.Context
	workerCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(forcedTimeout)

	// Контекст фоновых задач: outbox-воркер и архивный сток живут до начала shutdown
	workerCtx, workerCancel := context.WithCancel(context.Background())

	db, err := initPGDB(log, cfg)
	if err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	recordConv := pgdbConv.NewRecordConverterImpl()
	outboxConv := pgdbConv.NewOutboxEventConverterImpl()
	infoConv := redisConv.NewRecordInfoConverterImpl()

	registryRepo := pgdb.NewRecordRepo(db.Pool, recordConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	vectorRepo := qdrantRepo.NewVectorRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	archiveRepo := s3Repo.NewArchiveRepo(minioClient, cfg.Minio)
	archive := archiveInfra.NewArchiveInfrastructure(archiveRepo, log, workerCtx)
	cl.Add(func(ctx context.Context) error {
		return archive.WaitForFlush(ctx)
	})

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	if err := producer.EnsureTopic(initTimeout); err != nil {
		workerCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	worker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	cl.Add(func(ctx context.Context) error {
		worker.Stop()
		return nil
	})

	embedder := cohere.NewClient(cfg.Cohere, log)

	embeddingUC := usecase.NewEmbeddingUC(
		vectorRepo,
		registryRepo,
		cacheRepo,
		outboxRepo,
		db.Pool,
		embedder,
		archive,
		log,
		cfg.Qdrant.CollectionName,
		cfg.Qdrant.VectorSize,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(embeddingUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:          cfg,
		logger:       log,
		httpSrv:      httpSrv,
		worker:       worker,
		closer:       cl,
		workerCtx:    workerCtx,
		workerCancel: workerCancel,
	}, nil
}

// Run запускает HTTP-сервер и outbox-воркер, блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	a.worker.Start(a.workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	a.workerCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
