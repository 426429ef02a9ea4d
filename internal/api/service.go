package api

import (
	"context"
	"math/rand"

	"github.com/kilnlm/kiln/internal/inference"
	"github.com/kilnlm/kiln/internal/logger"
	"github.com/kilnlm/kiln/internal/metrics"
	"github.com/kilnlm/kiln/internal/respcache"
)

// GenerateService resolves request defaults, consults the response cache and
// falls through to the decode engine on a miss.
type GenerateService struct {
	engine inference.Engine
	cache  *respcache.Cache
	met    *metrics.Metrics
	log    logger.Logger
	seed   func() int64
}

func NewGenerateService(engine inference.Engine, cache *respcache.Cache, met *metrics.Metrics, log logger.Logger) *GenerateService {
	if cache == nil {
		cache = respcache.New(respcache.DefaultCapacity)
	}
	if log == nil {
		log = logger.Default()
	}
	return &GenerateService{
		engine: engine,
		cache:  cache,
		met:    met,
		log:    log,
		seed:   rand.Int63,
	}
}

// Cache exposes the response cache for health reporting.
func (s *GenerateService) Cache() *respcache.Cache { return s.cache }

// Generate serves one request, reporting whether it was answered from the
// cache.
func (s *GenerateService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, bool, error) {
	if req.Prompt == "" {
		return nil, false, newInvalidRequest("prompt is required")
	}

	maxNew := inference.DefaultMaxNewTokens
	if req.MaxNewTokens != nil {
		maxNew = *req.MaxNewTokens
	}
	if maxNew < 0 {
		maxNew = 0
	}
	temp := inference.DefaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if temp < 0 {
		return nil, false, newInvalidRequest("temperature must not be negative")
	}

	key := respcache.Key(req.Prompt, maxNew, temp)
	if e, ok := s.cache.Lookup(key); ok {
		if s.met != nil {
			s.met.CacheHits.Inc()
		}
		s.log.Debug("cache hit", "key", key)
		return &GenerateResponse{
			Prompt:          e.Prompt,
			GeneratedText:   e.Text,
			TokensGenerated: e.TokensGenerated,
		}, true, nil
	}
	if s.met != nil {
		s.met.CacheMisses.Inc()
	}

	result, err := s.engine.Generate(ctx, &inference.Request{
		Prompt:       req.Prompt,
		MaxNewTokens: maxNew,
		Temperature:  temp,
		Seed:         s.seed(),
	})
	if err != nil {
		return nil, false, err
	}

	if s.met != nil {
		s.met.TokensGenerated.Add(float64(result.TokensGenerated))
	}

	s.cache.Store(key, respcache.Entry{
		Prompt:          result.Prompt,
		Text:            result.Text,
		TokensGenerated: result.TokensGenerated,
	})
	if s.met != nil {
		s.met.CacheEntries.Set(float64(s.cache.Len()))
	}

	return &GenerateResponse{
		Prompt:          result.Prompt,
		GeneratedText:   result.Text,
		TokensGenerated: result.TokensGenerated,
	}, false, nil
}
