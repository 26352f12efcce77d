package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/avast/retry-go/v4"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const DefaultEmbeddingDimensions = 384
const DefaultEmbeddingTimeout = 30 * time.Second

var _ models.Embedder = &EmbeddingsClient{}

// EmbeddingsClient embeds text through a remote embedding endpoint,
// degrading to a deterministic local hashing scheme whenever the endpoint
// is unconfigured, unreachable, or returns an unusable shape. Indexing
// therefore never fails on upstream errors.
type EmbeddingsClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewEmbeddingsClient(cfg *config.Config) *EmbeddingsClient {
	timeout := DefaultEmbeddingTimeout
	if cfg.Embeddings.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Embeddings.TimeoutSeconds) * time.Second
	}

	return &EmbeddingsClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *EmbeddingsClient) Dimensions() int {
	if c.cfg.Embeddings.Dimensions > 0 {
		return c.cfg.Embeddings.Dimensions
	}
	return DefaultEmbeddingDimensions
}

func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	if c.cfg.Embeddings.Endpoint == "" {
		return FallbackEmbedding(text, c.Dimensions()), nil
	}

	embedding, err := c.embedRemote(ctx, text)
	if err != nil {
		log.Warnf("embedding request failed, using local fallback: %v", err)
		return FallbackEmbedding(text, c.Dimensions()), nil
	}

	return embedding, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

func (c *EmbeddingsClient) embedRemote(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{
		Model: c.cfg.Embeddings.Model,
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}

	var bodyBytes []byte
	// Retry the POST request 3 times with a 1 second delay.
	err = retry.Do(
		func() error {
			var err error
			bodyBytes, err = c.makeEmbedRequest(ctx, jsonBody)
			return err
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}

	return decodeEmbeddingPayload(bodyBytes)
}

func (c *EmbeddingsClient) makeEmbedRequest(ctx context.Context, jsonBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.Embeddings.Endpoint,
		bytes.NewBuffer(jsonBody),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"error making embedding request: %d - %s",
			resp.StatusCode,
			resp.Status,
		)
	}

	return io.ReadAll(resp.Body)
}

// decodeEmbeddingPayload normalizes the provider-dependent response
// shape. Three shapes are recognized, possibly nested under a "data"
// envelope: a bare numeric array, an array of {embedding: [...]} objects,
// and a single {embedding: [...]} object. Anything else is a
// ResponseShapeError.
func decodeEmbeddingPayload(body []byte) ([]float32, error) {
	payload := json.RawMessage(body)

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		payload = envelope.Data
	}

	var bare []float32
	if err := json.Unmarshal(payload, &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	var objects []struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &objects); err == nil &&
		len(objects) > 0 && len(objects[0].Embedding) > 0 {
		return objects[0].Embedding, nil
	}

	var object struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &object); err == nil && len(object.Embedding) > 0 {
		return object.Embedding, nil
	}

	return nil, &models.ResponseShapeError{Context: "embedding"}
}

// FallbackEmbedding builds a deterministic embedding by hashing tokens
// into buckets, weighting each token by 1/(position+1), then
// L2-normalizing. Identical text always yields an identical vector.
func FallbackEmbedding(text string, dimensions int) []float32 {
	vec := make([]float32, dimensions)

	for i, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		idx := int(h.Sum32() % uint32(dimensions))
		vec[idx] += float32(1.0 / float64(i+1))
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		// The zero vector stays as-is; cosine similarity against it is 0.
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
