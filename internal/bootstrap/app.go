package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"tasktracker/internal/app"
	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/logging"
	mongoClient "tasktracker/internal/platform/mongo"
	mysqlClient "tasktracker/internal/platform/mysql"
	rabbitmqClient "tasktracker/internal/platform/rabbitmq"
	redisClient "tasktracker/internal/platform/redis"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/memrepo"
	"tasktracker/internal/repository/mongorepo"
	"tasktracker/internal/repository/sqlrepo"
	"tasktracker/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Store  repository.Store

	Mongo          *mongo.Client
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	ActivityWorker *worker.ActivityPersistWorker

	Auth     *app.AuthService
	Tasks    *app.TaskService
	Activity *app.ActivityService

	StartedAt time.Time
}

// New loads config from file and env and logs to stdout.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg, logging.New(os.Stdout, cfg.Log))
}

// NewWithConfig connects every enabled backend and wires the services. On
// failure anything already opened is closed again.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}

	a := &App{
		Config:    cfg,
		Logger:    log,
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	if err := a.openStore(ctx); err != nil {
		return err
	}

	var denylist app.TokenDenylist
	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		denylist = cache.NewTokenDenylist(redisCli)
	} else {
		a.Logger.Warn("redis disabled, logout will not revoke tokens")
	}

	var publisher app.ActivityPublisher = app.NewStorePublisher(a.Store.Activities)
	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ)
		if err != nil {
			return err
		}
		a.MQConn = mqConn

		a.ActivityWorker = worker.NewActivityPersistWorker(mqConn, a.Store.Activities, cfg.RabbitMQ.ActivityQueue, a.Logger)
		if err := a.ActivityWorker.Start(ctx); err != nil {
			return fmt.Errorf("start activity worker failed: %w", err)
		}
		publisher = rabbitmqClient.NewActivityPublisher(mqConn, cfg.RabbitMQ.ActivityQueue)
	}

	creds := app.NewCredentialService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	a.Auth = app.NewAuthService(a.Store.Users, creds, denylist, a.Logger)
	a.Tasks = app.NewTaskService(a.Store.Tasks, publisher, a.Logger)
	a.Activity = app.NewActivityService(a.Store.Activities)
	return nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config

	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, err := mongoClient.New(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		a.Mongo = client
		db := client.Database(cfg.Mongo.Database)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		a.Store = mongorepo.New(db)
	case config.StoreDriverMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return err
		}
		a.MySQL = db
		if err := sqlrepo.Migrate(db); err != nil {
			return err
		}
		a.Store = sqlrepo.New(db)
	case config.StoreDriverMemory:
		a.Store = memrepo.New()
	default:
		return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	a.Logger.Info("store ready", "driver", cfg.Store.Driver)
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.ActivityWorker != nil {
		a.ActivityWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo failed: %w", err))
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close mysql failed: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
