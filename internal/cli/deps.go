package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/config"
	"github.com/fekuna/omnipos-crm-service/internal/crmclient"
	"github.com/fekuna/omnipos-crm-service/internal/customer"
	customerRepoPkg "github.com/fekuna/omnipos-crm-service/internal/customer/repository"
	customerUCPkg "github.com/fekuna/omnipos-crm-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-crm-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-crm-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-crm-service/internal/joblog"
	"github.com/fekuna/omnipos-crm-service/internal/jobs"
	"github.com/fekuna/omnipos-crm-service/internal/order"
	orderRepoPkg "github.com/fekuna/omnipos-crm-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-crm-service/internal/order/usecase"
	"github.com/fekuna/omnipos-crm-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-crm-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-crm-service/internal/product/usecase"
	"github.com/fekuna/omnipos-crm-service/pkg/broker"
	"github.com/fekuna/omnipos-crm-service/pkg/cache"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
	"github.com/fekuna/omnipos-crm-service/pkg/search"
)

// deps opens infrastructure on demand. Redis, Elasticsearch and Kafka are
// optional: a failed connection is logged and the feature degrades.
type deps struct {
	cfg *config.Config
	log logger.ZapLogger

	db      *sqlx.DB
	redis   *cache.RedisClient
	es      *search.Client
	orders  *broker.KafkaProducer
	closers []func() error
}

func newDeps(opts *RootOptions) *deps {
	return &deps{cfg: opts.Config, log: opts.Logger}
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn("Failed to close resource", zap.Error(err))
		}
	}
	d.closers = nil
}

func (d *deps) DB(ctx context.Context) (*sqlx.DB, error) {
	if d.db != nil {
		return d.db, nil
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch d.cfg.Database.Driver {
	case database.DriverSQLite:
		db, err = database.NewSQLite(ctx, d.cfg.Database.SQLitePath)
	case database.DriverPostgres:
		pg := d.cfg.Database.Postgres
		db, err = database.NewPostgres(ctx, &database.Config{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			DBName:          pg.DBName,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(pg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(pg.ConnMaxIdleTime) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", d.cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	d.db = db
	d.closers = append(d.closers, db.Close)
	d.log.Info("Connected to database", zap.String("driver", d.cfg.Database.Driver))
	return db, nil
}

func (d *deps) Redis() *cache.RedisClient {
	if d.redis != nil || d.cfg.Redis.Addr == "" {
		return d.redis
	}
	client, err := cache.NewRedisClient(&cache.Config{
		Addr:     d.cfg.Redis.Addr,
		Password: d.cfg.Redis.Password,
		DB:       d.cfg.Redis.DB,
	})
	if err != nil {
		d.log.Warn("Could not connect to Redis (caching and sweep locking disabled)", zap.Error(err))
		return nil
	}
	d.redis = client
	d.closers = append(d.closers, client.Close)
	d.log.Info("Connected to Redis", zap.String("addr", d.cfg.Redis.Addr))
	return client
}

func (d *deps) Search() *search.Client {
	if d.es != nil || len(d.cfg.Elastic.Addresses) == 0 {
		return d.es
	}
	client, err := search.NewClient(&search.Config{
		Addresses: d.cfg.Elastic.Addresses,
		Username:  d.cfg.Elastic.Username,
		Password:  d.cfg.Elastic.Password,
	})
	if err != nil {
		d.log.Warn("Could not connect to Elasticsearch (search falls back to the database)", zap.Error(err))
		return nil
	}
	d.es = client
	d.log.Info("Connected to Elasticsearch", zap.Strings("addresses", d.cfg.Elastic.Addresses))
	return client
}

func (d *deps) producer(topic string) *broker.KafkaProducer {
	if len(d.cfg.Kafka.Brokers) == 0 {
		return nil
	}
	p := broker.NewProducer(&broker.Config{Brokers: d.cfg.Kafka.Brokers, Topic: topic})
	d.closers = append(d.closers, p.Close)
	return p
}

func (d *deps) OrderEvents() *broker.KafkaProducer {
	if d.orders == nil {
		d.orders = d.producer(d.cfg.Kafka.OrdersTopic)
	}
	return d.orders
}

func (d *deps) TaskQueue() *broker.KafkaProducer {
	return d.producer(d.cfg.Kafka.TasksTopic)
}

func (d *deps) TaskConsumer() *broker.KafkaConsumer {
	if len(d.cfg.Kafka.Brokers) == 0 {
		return nil
	}
	c := broker.NewConsumer(&broker.Config{
		Brokers: d.cfg.Kafka.Brokers,
		Topic:   d.cfg.Kafka.TasksTopic,
		GroupID: d.cfg.Kafka.GroupID,
	})
	d.closers = append(d.closers, c.Close)
	return c
}

type useCases struct {
	customers customer.UseCase
	products  product.UseCase
	orders    order.UseCase
	inventory inventory.UseCase
}

func (d *deps) UseCases(ctx context.Context) (*useCases, error) {
	db, err := d.DB(ctx)
	if err != nil {
		return nil, err
	}

	customerRepo := customerRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	redisClient := d.Redis()

	var es customerUCPkg.SearchIndex
	if client := d.Search(); client != nil {
		es = client
	}
	var publisher orderUCPkg.EventPublisher
	if p := d.OrderEvents(); p != nil {
		publisher = p
	}
	invOpts := []invUCPkg.Option{invUCPkg.WithLockTTL(d.cfg.Restock.LockTTL)}
	if redisClient != nil {
		invOpts = append(invOpts, invUCPkg.WithLocker(redisClient), invUCPkg.WithListCache(redisClient))
	}

	return &useCases{
		customers: customerUCPkg.NewCustomerUseCase(customerRepo, es, d.log),
		products:  prodUCPkg.NewProductUseCase(prodRepo, redisClient, d.log),
		orders:    orderUCPkg.NewOrderUseCase(orderRepoPkg.NewPGRepository(db), customerRepo, prodRepo, publisher, d.log),
		inventory: invUCPkg.NewInventoryUseCase(invRepoPkg.NewPGRepository(db), d.log, invOpts...),
	}, nil
}

// Jobs builds the job registry against the configured GraphQL endpoint.
func (d *deps) Jobs() *jobs.Registry {
	jc := d.cfg.Jobs
	client := crmclient.New(jc.GraphQLURL, jc.HTTPTimeout)
	opt := jobs.WithTimeout(jc.HTTPTimeout)
	return jobs.NewRegistry(
		jobs.NewHeartbeat(client, joblog.New(jc.HeartbeatLog), d.log, opt),
		jobs.NewLowStock(client, joblog.New(jc.LowStockLog), d.log, opt),
		jobs.NewOrderReminders(client, joblog.New(jc.RemindersLog), d.log, jc.ReminderWindow, opt),
		jobs.NewCRMReport(client, joblog.New(jc.ReportLog), d.log, opt),
	)
}
