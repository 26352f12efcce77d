package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/llms"
	"github.com/tutorhub/tutorhub/pkg/models"
	"github.com/tutorhub/tutorhub/pkg/search"
	"github.com/tutorhub/tutorhub/pkg/server"
	"github.com/tutorhub/tutorhub/pkg/vectorstore"
)

const ShutdownTimeout = 10 * time.Second

// run is the entrypoint for the tutorhub server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring tutorhub: %s", err)
	}

	handleCLIOptions()

	log.Infof("Starting tutorhub server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)
	setupSignalHandler(srv)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil {
		log.Fatal(err)
	}
}

// NewAppState creates an AppState struct from the config file / ENV and
// wires up the generation service, vector store, and search service.
func NewAppState(cfg *config.Config) *models.AppState {
	embedder := llms.NewEmbeddingsClient(cfg)
	store := vectorstore.NewMemoryStore(cfg, embedder)

	return &models.AppState{
		Generation:  llms.NewService(cfg),
		Embedder:    embedder,
		VectorStore: store,
		Search:      search.NewService(cfg, store, embedder),
		Config:      cfg,
	}
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions() {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
}

// setupSignalHandler drains in-flight requests on termination before
// exiting.
func setupSignalHandler(srv interface {
	Shutdown(ctx context.Context) error
}) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
		os.Exit(0)
	}()
}
