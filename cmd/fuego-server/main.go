package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fuego-wallet/fuego-server/pkg/gateway"
)

func main() {
	log := logrus.StandardLogger().WithField("type", "cmd/fuego-server")

	config, err := gateway.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	server := &http.Server{
		Addr:    config.ListenAddress,
		Handler: gateway.NewServer(config).Router(),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("address", config.ListenAddress).Info("fuego server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-shutdown
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}
