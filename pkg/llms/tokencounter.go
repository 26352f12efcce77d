package llms

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/tutorhub/tutorhub/pkg/models"
)

// TokenCounter estimates token counts with the cl100k_base encoding. The
// estimate stands in when a provider response carries no usage metadata.
type TokenCounter struct {
	tkm *tiktoken.Tiktoken
}

func NewTokenCounter() (*TokenCounter, error) {
	tkm, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tkm: tkm}, nil
}

func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(tc.tkm.Encode(text, nil, nil))
}

// EstimateUsage fills in estimated token counts for a result that came
// back without usage metadata.
func (tc *TokenCounter) EstimateUsage(req *models.GenerationRequest, result *models.GenerationResult) models.Usage {
	input := tc.Count(req.SystemPrompt) + tc.Count(req.Text())
	for _, m := range req.History {
		input += tc.Count(m.Content)
	}

	return models.Usage{
		InputTokens:  input,
		OutputTokens: tc.Count(result.Text),
		Estimated:    true,
	}
}
