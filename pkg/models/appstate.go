package models

import (
	"github.com/tutorhub/tutorhub/config"
)

// AppState is a struct that holds the config and service dependencies of
// the running application. Services are constructed explicitly at startup
// and injected here; there are no package-level singletons.
type AppState struct {
	Generation  GenerationService
	Embedder    Embedder
	VectorStore VectorStore
	Search      SearchService
	Config      *config.Config
}
