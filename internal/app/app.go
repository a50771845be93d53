// Package app assembles the scoring and advice components from configuration.
package app

import (
	"context"
	"sync"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/document"
	"resumatch/internal/errors"
	"resumatch/internal/extract"
	"resumatch/internal/knowledge"
	"resumatch/internal/observability"
	"resumatch/internal/ranking"
	"resumatch/internal/scorer"
	"resumatch/internal/textnorm"
	"resumatch/internal/types"
)

// App holds the components shared by the CLI commands and the HTTP server
type App struct {
	Config        *config.Config
	Knowledge     *knowledge.Base
	Scorer        *scorer.Scorer
	Ranker        *ranking.Ranker
	Advisor       *ai.Advisor
	Extractor     document.Extractor
	Observability *observability.ObservabilityManager
	Logger        *errors.Logger

	// Generators holds one generator per operation that could be created
	Generators map[string]*ai.GeminiGenerator

	embedderMu sync.Mutex
	embedder   *ai.GeminiEmbedder
}

// New wires every component from cfg. Generators that cannot be created
// (usually a missing API key) are left out and their operation falls back.
func New(ctx context.Context, cfg *config.Config, version string, logger *errors.Logger) (*App, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	kb, err := knowledge.Load(cfg.Scoring.KnowledgeFile)
	if err != nil {
		return nil, err
	}

	om, err := observability.NewObservabilityManager(cfg.Observability, version)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to initialize observability", err)
	}

	a := &App{
		Config:        cfg,
		Knowledge:     kb,
		Extractor:     document.NewAutoExtractor(),
		Observability: om,
		Logger:        logger,
		Generators:    make(map[string]*ai.GeminiGenerator),
	}
	recorder := om.Recorder()

	var load scorer.EmbedderLoader
	if cfg.Embedding.Enabled {
		load = a.loadEmbedder
	}
	a.Scorer = scorer.New(kb, load, recorder, logger)
	a.Ranker = ranking.NewRanker(a.Extractor, a.Scorer, recorder, logger)

	opConfigs := map[string]config.OperationAIConfig{
		ai.OperationAdvice:   cfg.GetAdviceConfig(),
		ai.OperationFeedback: cfg.GetFeedbackConfig(),
		ai.OperationSkills:   cfg.GetSkillsConfig(),
	}
	operations := make(map[string]ai.Operation, len(opConfigs))
	for name, opCfg := range opConfigs {
		op := ai.Operation{MaxOutputTokens: opCfg.MaxOutputTokens, PromptTemplate: opCfg.PromptTemplate}
		gen, err := ai.NewGeminiGenerator(ctx, name, opCfg, recorder, logger)
		if err != nil {
			logger.Warn("AI generator unavailable, operation will use fallback output",
				"operation", name, "error", err.Error())
		} else {
			a.Generators[name] = gen
			op.Generator = gen
		}
		operations[name] = op
	}

	a.Advisor = ai.NewAdvisor(kb, ai.AdvisorOptions{
		Advice:   operations[ai.OperationAdvice],
		Feedback: operations[ai.OperationFeedback],
		Skills:   operations[ai.OperationSkills],
		Recorder: recorder,
		Logger:   logger,
	})

	logger.Debug("Application components initialized",
		"roles", len(kb.Roles()),
		"generators", len(a.Generators),
		"embeddings", cfg.Embedding.Enabled)
	return a, nil
}

func (a *App) loadEmbedder(ctx context.Context) (scorer.Embedder, error) {
	e, err := ai.NewGeminiEmbedder(ctx, a.Config.GetEmbeddingConfig(), a.Observability.Recorder(), a.Logger)
	if err != nil {
		return nil, err
	}
	a.embedderMu.Lock()
	a.embedder = e
	a.embedderMu.Unlock()
	return e, nil
}

// Analyze builds the structured record and detailed match for one resume
func (a *App) Analyze(ctx context.Context, filename, raw, role string) types.AnalysisReport {
	record := extract.BuildRecord(raw, a.Knowledge)
	return types.AnalysisReport{
		Filename:   filename,
		TargetRole: role,
		Record:     record,
		Match:      a.Scorer.DetailedAnalysis(ctx, record.RawText, record.CleanedText, role),
	}
}

// Advise produces comprehensive career advice for one resume
func (a *App) Advise(ctx context.Context, raw, role string, level types.ExperienceLevel) types.AdviceOutcome {
	return a.Advisor.ComprehensiveAdvice(ctx, textnorm.Normalize(raw), role, level)
}

// Feedback produces formatting and content feedback for one resume
func (a *App) Feedback(ctx context.Context, raw string) types.FeedbackOutcome {
	return a.Advisor.ResumeFeedback(ctx, raw)
}

// Skills extracts the resume's skills and recommends a plan toward role
func (a *App) Skills(ctx context.Context, raw, role string) types.SkillOutcome {
	skills := extract.ExtractSkills(raw, a.Knowledge.SkillVocabulary())
	return a.Advisor.SkillRecommendations(ctx, skills, role)
}

// ModelInfo reports model availability per operation. Operations without a
// generator are reported unavailable.
func (a *App) ModelInfo(ctx context.Context) map[string]*ai.ModelInfo {
	info := make(map[string]*ai.ModelInfo, len(a.Generators))
	for _, name := range Operations() {
		gen, ok := a.Generators[name]
		if !ok {
			info[name] = &ai.ModelInfo{Available: false, Error: "generator not configured"}
			continue
		}
		info[name] = gen.GetModelInfo(ctx)
	}
	return info
}

// BreakerStats returns circuit breaker statistics for every live AI client
func (a *App) BreakerStats() map[string]any {
	stats := make(map[string]any, len(a.Generators)+1)
	for name, gen := range a.Generators {
		stats[name] = gen.GetCircuitBreakerStats()
	}
	a.embedderMu.Lock()
	if a.embedder != nil {
		stats["embedding"] = a.embedder.GetCircuitBreakerStats()
	}
	a.embedderMu.Unlock()
	return stats
}

// Shutdown flushes telemetry
func (a *App) Shutdown(ctx context.Context) error {
	return a.Observability.Shutdown(ctx)
}

// Operations lists the advice operation names
func Operations() []string {
	return []string{ai.OperationAdvice, ai.OperationFeedback, ai.OperationSkills}
}
