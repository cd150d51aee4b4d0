package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"review-rag-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// VectorCache stores embeddings by key. A miss is (nil, false, nil).
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, values []float32) error
}

// CachedProvider memoizes query embeddings. Cache failures are logged and
// fall through to the wrapped provider.
type CachedProvider struct {
	inner  EmbeddingProvider
	cache  VectorCache
	logger logger.ILogger
}

var _ EmbeddingProvider = &CachedProvider{}

func NewCachedProvider(inner EmbeddingProvider, c VectorCache, log logger.ILogger) *CachedProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedProvider{inner: inner, cache: c, logger: log}
}

func (p *CachedProvider) Model() string   { return p.inner.Model() }
func (p *CachedProvider) Dimensions() int { return p.inner.Dimensions() }

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if taskType != TaskRetrievalQuery {
		return p.inner.Generate(ctx, text, taskType)
	}

	key := CacheKey(p.inner.Model(), taskType, text)
	values, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("Embedding", "Embedding cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if ok && len(values) == p.inner.Dimensions() {
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
	}

	resp, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, resp.Embedding.Values); err != nil {
		p.logger.Warn("Embedding", "Embedding cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return resp, nil
}

// CacheKey is model|taskType|sha256(text).
func CacheKey(model, taskType, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + "|" + taskType + "|" + hex.EncodeToString(sum[:])
}

type MemoryVectorCache struct {
	cache *cache.Cache
}

func NewMemoryVectorCache(ttl time.Duration) *MemoryVectorCache {
	return &MemoryVectorCache{cache: cache.New(ttl, 10*time.Minute)}
}

func (c *MemoryVectorCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	if x, found := c.cache.Get(key); found {
		values := x.([]float32)
		return append([]float32(nil), values...), true, nil
	}
	return nil, false, nil
}

func (c *MemoryVectorCache) Set(ctx context.Context, key string, values []float32) error {
	c.cache.Set(key, append([]float32(nil), values...), cache.DefaultExpiration)
	return nil
}

type RedisVectorCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisVectorCache(client *redis.Client, prefix string, ttl time.Duration) *RedisVectorCache {
	return &RedisVectorCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisVectorCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	blob, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	values, err := DecodeVector(blob)
	if err != nil {
		return nil, false, err
	}
	return values, true, nil
}

func (c *RedisVectorCache) Set(ctx context.Context, key string, values []float32) error {
	if err := c.client.Set(ctx, c.prefix+key, EncodeVector(values), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// EncodeVector packs values as little-endian float32s.
func EncodeVector(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func DecodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	values := make([]float32, len(blob)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return values, nil
}
