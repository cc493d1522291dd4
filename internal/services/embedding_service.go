package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"placehub/pkg/utils"
)

// EmbeddingProvider turns free text into a fixed-size vector. Init is
// called lazily before first use; implementations must tolerate
// repeated calls.
type EmbeddingProvider interface {
	Init(ctx context.Context) error
	Embed(text string, ctx context.Context) ([]float32, error)
	Dimension() int
}

type EmbeddingServiceInterface interface {
	Embed(text string, ctx context.Context) ([]float32, error)
	Dimension() int
	Init(ctx context.Context) error
}

// EmbeddingService guards a provider with memoized lazy initialization:
// concurrent first callers share one in-flight init, and a failed init
// is not cached so a later call can retry.
type EmbeddingService struct {
	provider EmbeddingProvider

	group singleflight.Group
	mu    sync.Mutex
	ready bool
}

func NewEmbeddingService(provider EmbeddingProvider) EmbeddingServiceInterface {
	return &EmbeddingService{provider: provider}
}

func (s *EmbeddingService) Init(ctx context.Context) error {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready {
		return nil
	}

	_, err, _ := s.group.Do("init", func() (interface{}, error) {
		if err := s.provider.Init(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *EmbeddingService) Embed(text string, ctx context.Context) ([]float32, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s.provider.Embed(text, ctx)
}

func (s *EmbeddingService) Dimension() int {
	return s.provider.Dimension()
}

// NewEmbeddingProviderFromEnv selects the provider by EMBEDDING_PROVIDER:
// "local" (default), "openai" or "gemini".
func NewEmbeddingProviderFromEnv() (EmbeddingProvider, error) {
	switch provider := os.Getenv("EMBEDDING_PROVIDER"); provider {
	case "", "local":
		return NewLocalEmbedder(), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai embedding provider")
		}
		return NewOpenAIEmbedder(key, os.Getenv("EMBEDDING_MODEL")), nil
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini embedding provider")
		}
		return NewGeminiEmbedder(key, os.Getenv("EMBEDDING_MODEL")), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// ---------------------------------------------------------------
// local: offline hash-feature embedding
// ---------------------------------------------------------------

const localEmbeddingDim = 384

// localEmbedder hashes tokens into feature buckets and mean-pools the
// normalized result. No network, no model download; quality is well
// below a real sentence model but the output is a pure function of the
// input text, which sync idempotence relies on.
type localEmbedder struct {
	dim int
}

func NewLocalEmbedder() EmbeddingProvider {
	return &localEmbedder{dim: localEmbeddingDim}
}

func (e *localEmbedder) Init(ctx context.Context) error { return nil }

func (e *localEmbedder) Dimension() int { return e.dim }

func (e *localEmbedder) Embed(text string, ctx context.Context) ([]float32, error) {
	vec := make([]float32, e.dim)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dim))
		// Low bit of the upper half decides the sign so buckets do not
		// only accumulate positives.
		if (sum>>32)&1 == 0 {
			vec[bucket] += 1
		} else {
			vec[bucket] -= 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// ---------------------------------------------------------------
// openai: hosted embeddings API
// ---------------------------------------------------------------

type openAIEmbedder struct {
	apiKey string
	model  openai.EmbeddingModel
	dim    int

	client *openai.Client
}

func NewOpenAIEmbedder(apiKey, model string) EmbeddingProvider {
	m := openai.SmallEmbedding3
	dim := 1536
	switch model {
	case "", string(openai.SmallEmbedding3):
	case string(openai.LargeEmbedding3):
		m = openai.LargeEmbedding3
		dim = 3072
	case string(openai.AdaEmbeddingV2):
		m = openai.AdaEmbeddingV2
		dim = 1536
	default:
		m = openai.EmbeddingModel(model)
	}
	return &openAIEmbedder{apiKey: apiKey, model: m, dim: dim}
}

func (e *openAIEmbedder) Init(ctx context.Context) error {
	e.client = openai.NewClient(e.apiKey)
	return nil
}

func (e *openAIEmbedder) Dimension() int { return e.dim }

func (e *openAIEmbedder) Embed(text string, ctx context.Context) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", utils.ErrEmbeddingQuotaExceeded, err)
		}
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai returned no embedding data")
	}
	return resp.Data[0].Embedding, nil
}

// ---------------------------------------------------------------
// gemini: hosted embeddings API
// ---------------------------------------------------------------

type geminiEmbedder struct {
	apiKey string
	model  string
	dim    int

	client *genai.Client
}

func NewGeminiEmbedder(apiKey, model string) EmbeddingProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &geminiEmbedder{apiKey: apiKey, model: model, dim: 768}
}

func (e *geminiEmbedder) Init(ctx context.Context) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	e.client = client
	return nil
}

func (e *geminiEmbedder) Dimension() int { return e.dim }

func (e *geminiEmbedder) Embed(text string, ctx context.Context) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", utils.ErrEmbeddingQuotaExceeded, err)
		}
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("gemini returned no embedding data")
	}
	return res.Embedding.Values, nil
}
