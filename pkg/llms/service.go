package llms

import (
	"context"
	"fmt"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

var _ models.GenerationService = &Service{}

// Service routes generation requests to provider clients and walks the
// fixed fallback order when the requested provider fails.
type Service struct {
	cfg     *config.Config
	clients map[models.Provider]models.LLMClient
	counter *TokenCounter
}

func NewService(cfg *config.Config) *Service {
	counter, err := NewTokenCounter()
	if err != nil {
		log.Warnf("token counter unavailable, usage estimates disabled: %v", err)
	}

	return &Service{
		cfg: cfg,
		clients: map[models.Provider]models.LLMClient{
			models.ProviderGemini:  NewGeminiLLM(cfg),
			models.ProviderMercury: NewMercuryLLM(cfg),
			models.ProviderOpenAI:  NewOpenAILLM(cfg),
		},
		counter: counter,
	}
}

func (s *Service) Providers() []models.Provider {
	return models.FallbackOrder
}

func (s *Service) Generate(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	provider := s.resolveProvider(req)

	client, ok := s.clients[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	log.Debugf("generating with provider %s", provider)
	result, err := s.attempt(ctx, client, req)
	if err == nil {
		return result, nil
	}
	log.Warnf("provider %s failed: %v", provider, err)

	if req.DisableFallback || s.cfg.LLM.DisableFallback {
		return nil, err
	}

	candidates := s.fallbackCandidates(provider)
	if len(candidates) == 0 {
		return nil, err
	}

	for _, candidate := range candidates {
		log.Infof("falling back to provider %s", candidate)

		// Fallback attempts reuse the request but never the explicit
		// model override; each provider uses its own default model.
		fbReq := *req
		fbReq.Model = ""
		fbReq.Provider = candidate

		result, fbErr := s.attempt(ctx, s.clients[candidate], &fbReq)
		if fbErr == nil {
			log.Infof("fallback to provider %s succeeded", candidate)
			return result, nil
		}
		log.Warnf("fallback provider %s failed: %v", candidate, fbErr)
	}

	return nil, &models.AllProvidersFailedError{
		Original: err,
		Tried:    append([]models.Provider{provider}, candidates...),
	}
}

func (s *Service) resolveProvider(req *models.GenerationRequest) models.Provider {
	if req.Provider != "" {
		return req.Provider
	}
	if s.cfg.LLM.DefaultProvider != "" {
		return models.Provider(s.cfg.LLM.DefaultProvider)
	}
	return models.FallbackOrder[0]
}

// fallbackCandidates returns the remaining providers in fixed priority
// order, filtered to those with configured credentials.
func (s *Service) fallbackCandidates(failed models.Provider) []models.Provider {
	var candidates []models.Provider
	for _, p := range models.FallbackOrder {
		if p == failed {
			continue
		}
		client, ok := s.clients[p]
		if !ok || !client.Available() {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

func (s *Service) attempt(
	ctx context.Context,
	client models.LLMClient,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout(s.cfg))
	defer cancel()

	result, err := client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	result.Provider = client.Provider()
	if result.Usage == (models.Usage{}) && s.counter != nil {
		result.Usage = s.counter.EstimateUsage(req, result)
	}

	return result, nil
}
