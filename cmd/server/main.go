package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	classroomhandler "github.com/ahmadsobohhh/UnityPlatform/internal/classroom/handler"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/joincode"
	classroommetrics "github.com/ahmadsobohhh/UnityPlatform/internal/classroom/metrics"
	classroomservice "github.com/ahmadsobohhh/UnityPlatform/internal/classroom/service"
	classroomstore "github.com/ahmadsobohhh/UnityPlatform/internal/classroom/store"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore/memory"
	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore/postgres"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/directory"
	identityhandler "github.com/ahmadsobohhh/UnityPlatform/internal/identity/handler"
	identitymetrics "github.com/ahmadsobohhh/UnityPlatform/internal/identity/metrics"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/profiles"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/provider/local"
	identityservice "github.com/ahmadsobohhh/UnityPlatform/internal/identity/service"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/tokens"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/config"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/httpserver"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/logger"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/metrics"
	redisclient "github.com/ahmadsobohhh/UnityPlatform/internal/platform/redis"
	httptransport "github.com/ahmadsobohhh/UnityPlatform/internal/transport/http"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/audit"
	auditkafka "github.com/ahmadsobohhh/UnityPlatform/pkg/platform/audit/kafka"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Document store: Postgres when configured, in-memory otherwise.
	var docs docstore.Store
	if cfg.Postgres.DSN != "" {
		pg, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open postgres document store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Error("failed to ensure document schema", "error", err)
			os.Exit(1)
		}
		docs = pg
		log.Info("using postgres document store")
	} else {
		docs = memory.New()
		log.Warn("POSTGRES_DSN not set, using in-memory document store")
	}

	// Redis arbitration for join-code allocation is optional.
	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Audit sink: Kafka when brokers are configured, otherwise a no-op.
	var auditPublisher audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Error("failed to connect audit publisher", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		auditPublisher = kp
		log.Info("audit events flowing to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	tokenService := tokens.NewService(cfg.Server.JWTSigningKey, "classroom", tokens.DefaultTTL)
	jwtValidator := tokens.NewServiceAdapter(tokenService)
	credentials := local.New(docs, tokenService)

	identity := identityservice.New(
		directory.New(docs),
		profiles.New(docs),
		credentials,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithMetrics(identitymetrics.New()),
	)

	classStore := classroomstore.New(docs)
	codeGen := joincode.New(classStore)
	if rdb != nil {
		codeGen = codeGen.WithArbiter(joincode.NewRedisArbiter(rdb.Client))
	}
	classrooms := classroomservice.New(
		classStore,
		codeGen,
		classroomservice.WithLogger(log),
		classroomservice.WithAuditPublisher(auditPublisher),
		classroomservice.WithMetrics(classroommetrics.New()),
	)

	router := httptransport.NewRouter(
		identityhandler.New(identity, log, jwtValidator),
		classroomhandler.New(classrooms, log, jwtValidator),
		log,
		metrics.New(),
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting classroom server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
