// Package narrative turns structured analysis results into free-text clinical
// prose via the Anthropic Messages API. The external call is wrapped with a
// circuit breaker, a rate limiter and an in-process response cache; failures
// degrade to a missing narrative, never a failed analysis.
package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/pgx-risk-server/internal/config"
	"github.com/pgx-risk-server/internal/domain"
)

// Client generates clinical narratives from analysis results.
type Client struct {
	anthropic anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	cache     *expirable.LRU[string, *domain.NarrativeAnalysis]
	logger    *logrus.Logger
}

// NewClient creates a narrative client from configuration.
func NewClient(cfg config.NarrativeConfig, logger *logrus.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "NarrativeLLM",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Narrative circuit breaker state changed")
		},
	})

	return &Client{
		anthropic: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		breaker:   breaker,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cache:     expirable.NewLRU[string, *domain.NarrativeAnalysis](cfg.CacheSize, nil, cfg.CacheTTL),
		logger:    logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate produces a clinical narrative for one analysis. Identical inputs
// within the cache TTL are served from the in-process cache without touching
// the API.
func (c *Client) Generate(
	ctx context.Context,
	variants []domain.Variant,
	phenotypes []domain.PhenotypePrediction,
	assessments []domain.DrugRiskAssessment,
	drugs []string,
) (*domain.NarrativeAnalysis, error) {
	prompt := buildPrompt(variants, phenotypes, assessments, drugs)
	key := cacheKey(prompt)

	if cached, ok := c.cache.Get(key); ok {
		c.logger.WithField("cache_key", key[:12]).Debug("Narrative served from cache")
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("narrative rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("narrative generation: %w", err)
	}

	narrative := result.(*domain.NarrativeAnalysis)
	c.cache.Add(key, narrative)
	return narrative, nil
}

// complete performs one Messages API call and parses the response.
func (c *Client) complete(ctx context.Context, prompt string) (*domain.NarrativeAnalysis, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.anthropic.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.WithError(err).WithField("model", c.model).Error("Narrative API call failed")
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"stop_reason": msg.StopReason,
	}).Info("Narrative API call completed")

	for _, block := range msg.Content {
		if block.Type == "text" {
			return parseNarrative(block.Text, c.model)
		}
	}
	return nil, fmt.Errorf("no text content in model response")
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
