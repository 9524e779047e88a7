package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"EXAM_PROCTOR/go-backend/internal/alerts"
	"EXAM_PROCTOR/go-backend/internal/config"
	"EXAM_PROCTOR/go-backend/internal/database"
	"EXAM_PROCTOR/go-backend/internal/emitter"
	"EXAM_PROCTOR/go-backend/internal/fusion"
	"EXAM_PROCTOR/go-backend/internal/handlers"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/monitor"
	"EXAM_PROCTOR/go-backend/internal/observer"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
)

var (
	grpcServer *grpc.Server
	httpServer *http.Server
)

func main() {
	cfg := config.LoadConfig()

	httpPort := flag.String("http-port", cfg.HTTPPort, "HTTP port")
	grpcPort := flag.String("grpc-port", cfg.GRPCPort, "gRPC port")
	detectorURL := flag.String("detector-url", cfg.DetectorURL, "Inference service address")
	hashKey := flag.String("hash-admin-key", "", "Print the ADMIN_KEY_HASH for the given key and exit")
	flag.Parse()

	if *hashKey != "" {
		hash, err := handlers.HashAdminKey(*hashKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hashing admin key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	logging.Init(cfg.LogLevel, cfg.Environment)

	logging.Info("starting exam proctor",
		"grpc_port", *grpcPort,
		"http_port", *httpPort,
		"detector", *detectorURL,
		"environment", cfg.Environment,
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	detector, err := services.NewDetectorClient(*detectorURL, cfg.DetectorTimeout, cfg.MaxMessageSizeMB)
	if err != nil {
		logging.Error("inference service client", "error", err)
		os.Exit(1)
	}
	defer detector.Close()
	logging.Info("inference client ready", "url", detector.URL(), "timeout", cfg.DetectorTimeout)

	metrics := services.GetMetrics()
	sessions := session.NewRegistry()

	pipeline := fusion.New(fusion.Detectors{
		Faces:   detector,
		Objects: detector,
		Gaze:    detector,
		Poses:   detector,
	}, sessions, fusion.Options{
		Weights:         fusion.Weights(cfg.Weights),
		PoseConcurrency: cfg.PoseConcurrency,
		Metrics:         metrics,
	})

	// Disabled collaborators stay untyped nil so the interface checks hold.
	var (
		publisher    alerts.Publisher
		emitterStats handlers.EmitterStats
		mqttEmitter  *emitter.MQTTEmitter
	)
	if cfg.MQTTEnabled() {
		mqttEmitter = emitter.NewMQTTEmitter(cfg)
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mqttEmitter.Connect(connectCtx); err != nil {
			logging.Warn("mqtt broker unavailable, alerts will not be published", "broker", cfg.MQTTBroker, "error", err)
		} else {
			publisher = mqttEmitter
		}
		cancel()
		emitterStats = mqttEmitter
	}

	var (
		journal     alerts.Journal
		eventLister handlers.EventLister
		db          *database.DB
	)
	if cfg.JournalEnabled() {
		openCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err = database.Open(openCtx, cfg.DBDriver, cfg.DSN())
		cancel()
		if err != nil {
			logging.Error("opening alert journal", "dsn", cfg.DSNForLog(), "error", err)
			os.Exit(1)
		}
		j := database.NewJournal(db)
		journal = j
		eventLister = j
		logging.Info("alert journal ready", "driver", db.Driver(), "dsn", cfg.DSNForLog())
	}

	hub := observer.NewHub(sessions, metrics)
	authority := services.NewAuthorityClient(cfg.AuthorityURL, cfg.EscalationTimeout)
	dispatcher := alerts.New(authority, hub, publisher, journal, metrics)
	svc := monitor.NewService(pipeline, dispatcher, metrics)

	auth := handlers.NewAdminAuth(cfg.AdminKeyHash)
	if !auth.Enabled() {
		logging.Warn("ADMIN_KEY_HASH is not set, operational endpoints are open")
	}

	h := handlers.New(handlers.Deps{
		Service:     svc,
		Detector:    detector,
		Sessions:    sessions,
		Observers:   hub,
		Journal:     eventLister,
		Emitter:     emitterStats,
		Metrics:     metrics,
		Auth:        auth,
		CORSOrigins: cfg.CORSOrigins,
		MaxUploadMB: cfg.MaxMessageSizeMB,
	})

	grpcServer = grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxMessageSizeMB*1024*1024),
		grpc.MaxSendMsgSize(cfg.MaxMessageSizeMB*1024*1024),
	)
	healthServer := handlers.NewGRPCHandler(svc).Register(grpcServer)

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	go sessions.RunEviction(evictCtx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout, hub.Attached)

	httpServer = newHTTPServer(*httpPort, h.Routes())

	go startGRPCServer(*grpcPort)
	go startHTTPServer()

	<-done
	logging.Info("shutting down")
	stopEviction()
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logging.Info("grpc server stopped")
	case <-shutdownCtx.Done():
		logging.Warn("forcing grpc shutdown")
		grpcServer.Stop()
	}

	hub.CloseAll()

	httpShutdownCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()

	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		logging.Error("http shutdown", "error", err)
	} else {
		logging.Info("http server stopped")
	}

	if mqttEmitter != nil {
		mqttEmitter.Disconnect()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logging.Error("closing alert journal", "error", err)
		}
	}

	logging.Info("goodbye")
}

func startGRPCServer(grpcPort string) {
	port := strings.TrimPrefix(grpcPort, ":")

	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logging.Error("grpc listen", "port", port, "error", err)
		os.Exit(1)
	}

	logging.Info("grpc server listening", "port", port)
	if err := grpcServer.Serve(lis); err != nil {
		logging.Error("grpc serve", "error", err)
		os.Exit(1)
	}
}

func newHTTPServer(httpPort string, handler http.Handler) *http.Server {
	port := strings.TrimPrefix(httpPort, ":")

	// No WriteTimeout: observer websockets are long-lived.
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func startHTTPServer() {
	port := strings.TrimPrefix(httpServer.Addr, ":")

	logging.Info("http server listening",
		"port", port,
		"observers", fmt.Sprintf("ws://localhost:%s/ws/{subject_id}/{exam_id}", port),
		"api", fmt.Sprintf("http://localhost:%s/api/*", port),
	)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("http serve", "error", err)
		os.Exit(1)
	}
}
