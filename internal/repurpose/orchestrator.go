package repurpose

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/suteetoe/repurpose/pkg/logger"
	"github.com/suteetoe/repurpose/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoPlatforms = errors.New("at least one platform is required")

// Request describes one fan-out over the requested platforms
type Request struct {
	Source     string
	Platforms  []string
	Tone       string
	BrandVoice string
}

// Result is the outcome for a single platform. Exactly one of Err or
// Metadata is meaningful.
type Result struct {
	Platform string
	Text     string
	Metadata map[string]any
	Err      error
}

// OK reports whether the platform produced output
func (r Result) OK() bool {
	return r.Err == nil
}

// MarshalJSON renders the structured output, or {"error": message} on failure
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]string{"error": r.Err.Error()})
	}
	return json.Marshal(r.Metadata)
}

// Results holds one Result per distinct requested platform, in request order
type Results []Result

// Get returns the result for platform
func (rs Results) Get(platform string) (Result, bool) {
	for _, r := range rs {
		if r.Platform == platform {
			return r, true
		}
	}
	return Result{}, false
}

// Succeeded returns the results that produced output
func (rs Results) Succeeded() Results {
	out := make(Results, 0, len(rs))
	for _, r := range rs {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// MarshalJSON renders the results as a platform-keyed object
func (rs Results) MarshalJSON() ([]byte, error) {
	m := make(map[string]Result, len(rs))
	for _, r := range rs {
		m[r.Platform] = r
	}
	return json.Marshal(m)
}

// NormalizePlatforms trims names, drops empties and keeps the first
// occurrence of duplicates
func NormalizePlatforms(platforms []string) []string {
	seen := make(map[string]struct{}, len(platforms))
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Orchestrator generates output for many platforms concurrently
type Orchestrator struct {
	client         Client
	maxConcurrency int
}

// NewOrchestrator creates an orchestrator. maxConcurrency <= 0 runs every
// platform at once.
func NewOrchestrator(client Client, maxConcurrency int) *Orchestrator {
	return &Orchestrator{client: client, maxConcurrency: maxConcurrency}
}

// Client returns the underlying model client
func (o *Orchestrator) Client() Client {
	return o.client
}

// Generate runs one model call per distinct platform. A failing platform
// never affects the others; its Result carries the error instead.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Results, error) {
	platforms := NormalizePlatforms(req.Platforms)
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	log := logger.FromContext(ctx)
	log.Info("Generating content",
		zap.Strings("platforms", platforms),
		zap.String("tone", req.Tone),
		zap.Bool("brand_voice", strings.TrimSpace(req.BrandVoice) != ""),
	)

	results := make(Results, len(platforms))

	var g errgroup.Group
	limit := o.maxConcurrency
	if limit <= 0 {
		limit = len(platforms)
	}
	g.SetLimit(limit)

	for i, name := range platforms {
		i, name := i, name
		g.Go(func() error {
			results[i] = o.generateOne(ctx, req.Source, Platform(name), req.Tone, req.BrandVoice)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := len(results.Succeeded())
	log.Info("Generation finished",
		zap.Int("requested", len(platforms)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(platforms)-succeeded),
	)

	return results, nil
}

// Regenerate produces a fresh result for a single platform
func (o *Orchestrator) Regenerate(ctx context.Context, source, platform, tone, brandVoice string) Result {
	return o.generateOne(ctx, source, Platform(strings.TrimSpace(platform)), tone, brandVoice)
}

func (o *Orchestrator) generateOne(ctx context.Context, source string, platform Platform, tone, brandVoice string) (result Result) {
	result.Platform = string(platform)
	log := logger.FromContext(ctx).With(zap.String("platform", string(platform)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Platform generation panicked", zap.Any("panic", r))
			result = Result{Platform: string(platform), Err: errors.New("internal error during generation")}
		}
	}()

	done := prometheus.TrackModelCall(metricsLabel(platform))

	text, err := o.client.Complete(ctx, CompletionRequest{
		Platform: platform,
		Source:   source,
		Prompt:   BuildPrompt(source, platform, tone, brandVoice),
	})
	done(err)
	if err != nil {
		log.Warn("Platform generation failed", zap.Error(err))
		result.Err = err
		return result
	}

	metadata, structured := Normalize(text, platform)
	if !structured {
		prometheus.RecordUnstructuredReply(metricsLabel(platform))
		log.Debug("Model reply carried no JSON object, wrapping as content")
	}

	result.Text = text
	result.Metadata = metadata
	return result
}

// metricsLabel keeps label cardinality bounded for free-form platform names
func metricsLabel(p Platform) string {
	if p.Known() {
		return string(p)
	}
	return "other"
}
