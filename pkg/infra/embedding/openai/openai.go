package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/embedding"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	vectorDimension = 1536
	embeddingsURL   = "https://api.openai.com/v1/embeddings"
	requestTimeout  = 30 * time.Second
)

type embeddingService struct {
	client *fasthttp.Client
	logger *logrus.Logger
}

func NewOpenAIEmbeddingService(client *fasthttp.Client, logger *logrus.Logger) embedding.Creator {
	return &embeddingService{client: client, logger: logger}
}

type apiRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type apiResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (s *embeddingService) Generate(
	ctx context.Context,
	text, model string,
	config *embedding.Config,
) (*embedding.Embedding, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("embeddings API key not provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(apiRequest{Model: model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	body, err := s.post(ctx, payload, config.Credentials.ApiKey)
	if err != nil {
		return nil, err
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		s.logger.WithError(err).Error("failed to decode embeddings response")
		return nil, err
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embeddings from API")
	}

	vector := decoded.Data[0].Embedding
	if len(vector) != vectorDimension {
		s.logger.WithFields(logrus.Fields{
			"got":  len(vector),
			"want": vectorDimension,
		}).Warn("unexpected embedding dimension")
	}
	normalizeVector(vector)

	return &embedding.Embedding{
		Value:     vector,
		CreatedAt: time.Now(),
	}, nil
}

// post runs the fasthttp round trip on a helper goroutine so the caller's
// context can still cancel the wait.
func (s *embeddingService) post(ctx context.Context, payload []byte, apiKey string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(embeddingsURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.SetBody(payload)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.DoTimeout(req, resp, requestTimeout)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		if err != nil {
			s.logger.WithError(err).Error("embeddings request failed")
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		s.logger.WithField("response", string(resp.Body())).Error("non-OK response from embeddings API")
		return nil, fmt.Errorf("%w: %d", embedding.ErrProviderNonOKResponse, resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// normalizeVector scales v to unit length so cosine similarity reduces to a
// dot product downstream.
func normalizeVector(v []float64) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += val * val
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
