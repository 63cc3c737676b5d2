package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-checkout/checkout/config"
	"github.com/Astemirdum/library-checkout/checkout/internal/handler"
	"github.com/Astemirdum/library-checkout/checkout/internal/repository"
	"github.com/Astemirdum/library-checkout/checkout/internal/server"
	"github.com/Astemirdum/library-checkout/checkout/internal/service"
	"github.com/Astemirdum/library-checkout/checkout/migrations"
	"github.com/Astemirdum/library-checkout/pkg/circuit_breaker"
	"github.com/Astemirdum/library-checkout/pkg/kafka"
	"github.com/Astemirdum/library-checkout/pkg/logger"
	"github.com/Astemirdum/library-checkout/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "checkout")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	publisher, closePublisher := newPublisher(cfg.Kafka, log)
	svc := service.NewService(repo, publisher, log)
	catalog := service.NewCatalog(repo, repo, log)

	h := handler.New(svc, catalog, log, cfg.Retry.Options()...)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err = g.Wait(); err != nil {
		log.Error("server", zap.Error(err))
	}

	closePublisher()
	if err = db.Close(); err != nil {
		log.Error("db close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

// newPublisher returns a nil publisher when no brokers are configured,
// which turns event publishing off.
func newPublisher(cfg kafka.Config, log *zap.Logger) (*kafka.Publisher, func()) {
	if len(cfg.Addrs) == 0 {
		log.Info("kafka brokers are not configured, checkout events are off")
		return nil, func() {}
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	const (
		recordLength     = 20
		openTimeout      = 10 * time.Second
		failurePercent   = 0.5
		recoveryRequests = 3
	)
	cb := circuit_breaker.New(recordLength, openTimeout, failurePercent, recoveryRequests)
	return kafka.NewPublisher(producer, cfg.Topic, cb), func() {
		if err := producer.Close(); err != nil {
			log.Error("kafka producer close", zap.Error(err))
		}
	}
}
