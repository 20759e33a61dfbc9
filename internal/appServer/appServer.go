// launching the server, redis, kafka, rabbitmq
package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ace0731/Image-Converter/config"
	"github.com/Ace0731/Image-Converter/internal/database"
	"github.com/Ace0731/Image-Converter/internal/pkg/kafka"
	"github.com/Ace0731/Image-Converter/internal/pkg/processor"
	"github.com/Ace0731/Image-Converter/internal/pkg/rabbitmq"
	"github.com/Ace0731/Image-Converter/internal/pkg/redis"
	"github.com/Ace0731/Image-Converter/internal/service"
	"github.com/Ace0731/Image-Converter/internal/transport"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewRepository uses Redis when enabled and reachable, memory otherwise.
func NewRepository(ctx context.Context, cfg *config.Config) database.BatchRepository {
	if !cfg.Redis.Enabled {
		return database.NewMemoryBatchRepository()
	}

	client, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logrus.Warnf("Redis unavailable, keeping batches in memory: %v", err)
		return database.NewMemoryBatchRepository()
	}
	return database.NewRedisBatchRepository(client, cfg.Redis.TTL)
}

// NewPublisher picks the broker for result events: RabbitMQ, Kafka, or a
// logging publisher.
func NewPublisher(cfg *config.Config) service.Publisher {
	if cfg.RabbitMQ.Enabled {
		mq, err := rabbitmq.NewRabbitMQ(rabbitmq.RabbitMQConfig{URL: cfg.RabbitMQ.URL, QueueName: cfg.RabbitMQ.Queue})
		if err == nil {
			logrus.Infof("Publishing results to RabbitMQ queue %s", cfg.RabbitMQ.Queue)
			return mq
		}
		logrus.Warnf("RabbitMQ unavailable: %v", err)
	}
	if cfg.Kafka.Enabled {
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	return kafka.NewLogProducer(cfg.Kafka.Topic)
}

func NewConversionService(ctx context.Context, cfg *config.Config) (service.ConversionService, service.Publisher) {
	imgProcessor := processor.NewImageProcessor(cfg.Convert.MaxWidth, cfg.Convert.MaxHeight)
	batchProcessor := processor.NewBatchProcessor(imgProcessor)
	publisher := NewPublisher(cfg)
	return service.NewConversionService(batchProcessor, NewRepository(ctx, cfg), publisher), publisher
}

func NewServer(cfg *config.Config) {

	ctx := context.Background()
	convService, publisher := NewConversionService(ctx, cfg)
	handlers := transport.NewHandlers(convService, publisher, cfg.Convert)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handlers, cfg.Server.AllowedOrigins)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Printf("App Started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	convService.Shutdown()

	if err := publisher.Close(); err != nil {
		logrus.Errorf("error occured on closing publisher: %s", err.Error())
	}
}
