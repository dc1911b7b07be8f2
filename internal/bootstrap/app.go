package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"conduit-api/internal/app"
	"conduit-api/internal/config"
	"conduit-api/internal/metrics"
	"conduit-api/internal/pkg/jwtutil"
	mongoClient "conduit-api/internal/platform/mongo"
	mysqlClient "conduit-api/internal/platform/mysql"
	rabbitmqClient "conduit-api/internal/platform/rabbitmq"
	redisClient "conduit-api/internal/platform/redis"
	"conduit-api/internal/repository"
	"conduit-api/internal/repository/memory"
	"conduit-api/internal/repository/mongodb"
	mysqlrepo "conduit-api/internal/repository/mysql"
	redisrepo "conduit-api/internal/repository/redis"
	"conduit-api/internal/worker"
)

// App owns every long-lived client and the services built on top of them.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Metrics *metrics.Metrics

	Mongo       *mongo.Client
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.EventPersistWorker

	AuthService    *app.AuthService
	ArticleService *app.ArticleService
	AuditService   *app.AuditService

	StartedAt time.Time
}

type repositories struct {
	users    repository.UserRepository
	nonces   repository.NonceRepository
	articles repository.ArticleRepository
	events   repository.EventRepository
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Log:       log,
		StartedAt: time.Now(),
	}
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New(cfg.Metrics.Namespace)
	}

	repos, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.Nonce.Backend == config.NonceBackendRedis {
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		repos.nonces = redisrepo.NewNonceRepository(a.Redis, cfg.Redis.KeyPrefix)
	}

	a.AuditService = app.NewAuditService(repos.events)
	var publisher app.EventPublisher = a.AuditService
	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.EventWorker = worker.NewEventPersistWorker(a.MQConn, repos.events, cfg.RabbitMQ.AuditQueue, log)
		if err := a.EventWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start event worker failed: %w", err)
		}
		publisher = rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.AuditQueue)
	}

	a.AuthService = app.NewAuthService(
		repos.users,
		repos.nonces,
		repos.articles,
		jwtutil.NewService(&cfg.Auth),
		publisher,
		cfg.Auth.BcryptCost,
		log,
	)
	a.ArticleService = app.NewArticleService(repos.articles)

	log.Info("application wired",
		"store", cfg.Store.Driver,
		"nonce_backend", cfg.Nonce.Backend,
		"audit_broker", cfg.RabbitMQ.Enabled,
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repositories, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := mongoClient.New(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		db := client.Database(cfg.Mongo.DB)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &repositories{
			users:    mongodb.NewUserRepository(db),
			nonces:   mongodb.NewNonceRepository(db),
			articles: mongodb.NewArticleRepository(db),
			events:   mongodb.NewEventRepository(db),
		}, nil

	case config.StoreMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		a.MySQL = db
		if err := mysqlrepo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
		return &repositories{
			users:    mysqlrepo.NewUserRepository(db),
			nonces:   mysqlrepo.NewNonceRepository(db),
			articles: mysqlrepo.NewArticleRepository(db),
			events:   mysqlrepo.NewEventRepository(db),
		}, nil

	case config.StoreMemory:
		return &repositories{
			users:    memory.NewUserRepository(),
			nonces:   memory.NewNonceRepository(),
			articles: memory.NewArticleRepository(),
			events:   memory.NewEventRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func (a *App) Close() error {
	var closeErr error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
