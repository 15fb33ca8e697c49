// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/CodedNil/deducers-sub000/internal/handlers"
	"github.com/CodedNil/deducers-sub000/internal/lobby"
	"github.com/CodedNil/deducers-sub000/internal/middleware"
	"github.com/CodedNil/deducers-sub000/internal/oracle"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ai, err := oracle.NewOpenAI(os.Getenv("OPENAI_API_KEY"), logger)
	if err != nil {
		log.Fatalf("oracle init failed: %v", err)
	}

	registry := lobby.NewRegistry(ai, logger)
	go registry.Run(context.Background(), lobby.TickInterval)

	srv := handlers.NewServer(registry, logger)
	handler := middleware.LogMiddleware(logger)(srv.Routes())

	addr := ":3013"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
