package llms

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tutorhub/tutorhub/internal"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const jsonOnlyInstruction = "Respond with valid JSON only. " +
	"Do not include any explanatory text or markdown formatting."

const structuredExcerptLength = 200

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// GenerateStructured delegates to Generate with the response format
// forced to JSON and a JSON-only instruction appended to the prompt, then
// parses the returned text. A response wrapped in a fenced code block
// gets one repair attempt before the parse error surfaces.
func (s *Service) GenerateStructured(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.StructuredResult, error) {
	structReq := *req
	structReq.ResponseFormat = models.ResponseFormatJSON
	if structReq.Prompt != "" || len(structReq.Parts) == 0 {
		structReq.Prompt = strings.TrimSpace(structReq.Prompt + "\n\n" + jsonOnlyInstruction)
	} else {
		structReq.Parts = append(
			append([]models.PromptPart{}, structReq.Parts...),
			models.PromptPart{Text: jsonOnlyInstruction},
		)
	}

	result, err := s.Generate(ctx, &structReq)
	if err != nil {
		return nil, err
	}

	data, err := ParseStructuredOutput(result.Text)
	if err != nil {
		return nil, err
	}

	return &models.StructuredResult{
		GenerationResult: *result,
		Data:             data,
	}, nil
}

// ParseStructuredOutput parses model output as JSON, extracting a fenced
// ```json block first if the raw text does not parse directly.
func ParseStructuredOutput(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)

	var data json.RawMessage
	err := json.Unmarshal([]byte(trimmed), &data)
	if err == nil {
		return data, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		fenced := strings.TrimSpace(m[1])
		if fencedErr := json.Unmarshal([]byte(fenced), &data); fencedErr == nil {
			return data, nil
		}
	}

	return nil, &models.StructuredOutputError{
		Excerpt: internal.TruncateString(trimmed, structuredExcerptLength),
		Cause:   err,
	}
}
