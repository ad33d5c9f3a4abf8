package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/cache"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/embedding"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// harmfulConcepts is the reference bank matched against incoming content by
// embedding similarity. Keys double as cache entity ids, so renaming one
// invalidates its cached vector.
var harmfulConcepts = map[string]string{
	"violence_instructions": "detailed instructions for hurting or killing another person",
	"weapon_manufacture":    "how to build a bomb, firearm or other deadly weapon at home",
	"child_exploitation":    "sexual content involving minors or grooming of children",
	"suicide_methods":       "methods and encouragement for suicide or self harm",
	"terrorism_planning":    "planning or glorifying a terrorist attack on civilians",
	"hate_dehumanization":   "dehumanizing an ethnic, religious or other protected group",
	"drug_synthesis":        "step by step synthesis of illegal drugs",
	"doxxing_stalking":      "finding someone's home address to stalk or harass them",
}

type ConceptBankConfig struct {
	Provider  string  `mapstructure:"provider"`
	Model     string  `mapstructure:"model"`
	ApiKey    string  `mapstructure:"api_key"`
	Threshold float64 `mapstructure:"threshold"`
}

// ConceptBank holds the seeded concept vectors and answers nearest-neighbour
// queries. Vectors are unit length, so cosine similarity reduces to a dot
// product.
type ConceptBank struct {
	creator embedding.Creator
	cache   *cache.Cache
	logger  *logrus.Logger
	cfg     ConceptBankConfig

	mu      sync.RWMutex
	vectors map[string][]float64
}

func NewConceptBank(creator embedding.Creator, redisCache *cache.Cache, logger *logrus.Logger, cfg ConceptBankConfig) *ConceptBank {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.85
	}
	return &ConceptBank{
		creator: creator,
		cache:   redisCache,
		logger:  logger,
		cfg:     cfg,
		vectors: make(map[string][]float64),
	}
}

func (b *ConceptBank) Enabled() bool {
	return b.cfg.ApiKey != ""
}

func (b *ConceptBank) Threshold() float64 {
	return b.cfg.Threshold
}

// Seed loads the concept vectors, preferring the redis cache over the
// provider. Without credentials it logs once and leaves the bank empty.
func (b *ConceptBank) Seed(ctx context.Context) error {
	if !b.Enabled() {
		b.logger.Warn("embedding credentials not configured, similarity layer disabled")
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for key, phrase := range harmfulConcepts {
		if b.cache != nil {
			cached, err := b.cache.GetEmbedding(ctx, b.cfg.Model, key)
			if err == nil {
				b.vectors[key] = cached.Value
				continue
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.WithError(err).WithField("concept", key).Warn("embedding cache read failed")
			}
		}

		emb, err := b.generate(ctx, key, phrase)
		if err != nil {
			return fmt.Errorf("failed to seed concept %s: %w", key, err)
		}
		b.vectors[key] = emb.Value

		if b.cache != nil {
			if err := b.cache.SaveEmbedding(ctx, b.cfg.Model, emb, common.EmbeddingCacheTTL); err != nil {
				b.logger.WithError(err).WithField("concept", key).Warn("embedding cache write failed")
			}
		}
	}
	return nil
}

// Match embeds the content and returns the closest concept, or nil when the
// bank is disabled or empty.
func (b *ConceptBank) Match(ctx context.Context, content string) (*embedding.SearchResult, error) {
	if !b.Enabled() {
		return nil, nil
	}

	b.mu.RLock()
	empty := len(b.vectors) == 0
	b.mu.RUnlock()
	if empty {
		return nil, nil
	}

	emb, err := b.generate(ctx, "", content)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	best := &embedding.SearchResult{Score: -1}
	for key, vector := range b.vectors {
		score := dot(emb.Value, vector)
		if score > best.Score {
			best.Key = key
			best.Score = score
			best.Data = harmfulConcepts[key]
		}
	}
	if best.Key == "" {
		return nil, nil
	}
	return best, nil
}

func (b *ConceptBank) generate(ctx context.Context, entityID, text string) (*embedding.Embedding, error) {
	emb, err := b.creator.Generate(ctx, text, b.cfg.Model, &embedding.Config{
		Provider: b.cfg.Provider,
		Model:    b.cfg.Model,
		Credentials: embedding.Credentials{
			ApiKey: b.cfg.ApiKey,
		},
	})
	if err != nil {
		return nil, err
	}
	emb.EntityID = entityID
	return emb, nil
}

func dot(a, c []float64) float64 {
	n := len(a)
	if len(c) < n {
		n = len(c)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * c[i]
	}
	return sum
}
