package ai

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/knowledge"
	"resumatch/internal/observability"
	"resumatch/internal/types"
)

// Operation names, shared with config and metrics
const (
	OperationAdvice   = "advice"
	OperationFeedback = "feedback"
	OperationSkills   = "skills"
)

// Section headers
const (
	headerScore         = "OVERALL_SCORE"
	headerReadiness     = "READINESS_LEVEL"
	headerStrengths     = "STRENGTHS"
	headerImprovements  = "IMPROVEMENTS"
	headerMissingSkills = "MISSING_SKILLS"
	headerRoadmap       = "ROADMAP"
	headerCourses       = "COURSES"
	headerActionItems   = "ACTION_ITEMS"

	headerFormatting      = "FORMATTING"
	headerContentQuality  = "CONTENT_QUALITY"
	headerMissingElements = "MISSING_ELEMENTS"

	headerTechnicalSkills = "TECHNICAL_SKILLS"
	headerSoftSkills      = "SOFT_SKILLS"
	headerLearningPath    = "LEARNING_PATH"
	headerCertifications  = "CERTIFICATIONS"
)

var (
	feedbackHeaders = []string{headerFormatting, headerContentQuality, headerMissingElements, headerImprovements}
	skillsHeaders   = []string{headerTechnicalSkills, headerSoftSkills, headerLearningPath, headerCertifications}
)

var leadingNumber = regexp.MustCompile(`^[*_ \t]*(\d+)`)

// Operation binds a generator to one kind of request. A nil Generator
// makes the operation answer with its fallback.
type Operation struct {
	Generator       Generator
	MaxOutputTokens int32
	PromptTemplate  string
}

// AdvisorOptions configures an Advisor
type AdvisorOptions struct {
	Advice   Operation
	Feedback Operation
	Skills   Operation
	Recorder observability.Recorder
	Logger   *errors.Logger
}

// Advisor synthesizes career advice from a generator's free-text output.
// It never returns an error: failures become fallback outcomes.
type Advisor struct {
	kb       *knowledge.Base
	advice   Operation
	feedback Operation
	skills   Operation
	parser   *SectionParser
	recorder observability.Recorder
	logger   *errors.Logger
}

// NewAdvisor creates an Advisor. Zero MaxOutputTokens pick the built-in budgets.
func NewAdvisor(kb *knowledge.Base, opts AdvisorOptions) *Advisor {
	if opts.Recorder == nil {
		opts.Recorder = observability.NopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = errors.NewNopLogger()
	}
	if opts.Advice.MaxOutputTokens <= 0 {
		opts.Advice.MaxOutputTokens = 3000
	}
	if opts.Feedback.MaxOutputTokens <= 0 {
		opts.Feedback.MaxOutputTokens = 1500
	}
	if opts.Skills.MaxOutputTokens <= 0 {
		opts.Skills.MaxOutputTokens = 1200
	}

	return &Advisor{
		kb:       kb,
		advice:   opts.Advice,
		feedback: opts.Feedback,
		skills:   opts.Skills,
		parser: NewSectionParser(headerScore, headerReadiness, headerStrengths, headerImprovements,
			headerMissingSkills, headerRoadmap, headerCourses, headerActionItems),
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// DefaultAdvice returns the fixed record used whenever generated advice is unusable
func DefaultAdvice() types.AdviceResult {
	return types.AdviceResult{
		OverallScore:   7,
		ReadinessLevel: types.ReadinessDeveloping,
		Strengths:      []string{"Experience in relevant field", "Good technical background"},
		Improvements:   []string{"Enhance technical skills", "Improve resume formatting"},
		MissingSkills:  []string{"Advanced technical skills", "Industry-specific knowledge"},
		Roadmap:        []string{"Identify skill gaps", "Take relevant courses", "Build portfolio projects", "Apply for positions"},
		Courses:        []string{"Online technical courses", "Industry certifications", "Soft skills training"},
		ActionItems:    []string{"Update resume", "Build portfolio", "Apply to relevant positions"},
	}
}

// ComprehensiveAdvice asks for a full structured assessment of resume against role
func (a *Advisor) ComprehensiveAdvice(ctx context.Context, resume, role string, level types.ExperienceLevel) types.AdviceOutcome {
	prompt := buildAdvicePrompt(a.advice.PromptTemplate, resume, role, string(level))

	text, reason := a.generate(ctx, OperationAdvice, a.advice, prompt)
	if reason != "" {
		return a.adviceFallback(ctx, role, reason)
	}

	sections, err := a.parser.Parse(text)
	if err != nil {
		return a.adviceFallback(ctx, role, types.ReasonNoRecognizedSections)
	}

	advice, err := a.assembleAdvice(sections, resume, role)
	if err != nil {
		a.logger.Warn("Discarding unparseable advice response", "role", role, "error", err.Error())
		return a.adviceFallback(ctx, role, types.ReasonParseFailed)
	}

	a.recorder.AdviceRequested(ctx, OperationAdvice, string(types.SourceAI))
	return types.AdviceOutcome{Advice: advice, Source: types.SourceAI}
}

func (a *Advisor) assembleAdvice(sections Sections, resume, role string) (types.AdviceResult, error) {
	result := DefaultAdvice()

	score, found, err := parseScore(sections)
	if err != nil {
		return types.AdviceResult{}, err
	}
	if found {
		result.OverallScore = score
	} else {
		result.OverallScore = a.HeuristicScore(resume, role)
	}

	if line, ok := sections.Scalar(headerReadiness); ok {
		if readiness, ok := types.ParseReadiness(line); ok {
			result.ReadinessLevel = readiness
		}
	}

	lists := []struct {
		header string
		dest   *[]string
	}{
		{headerStrengths, &result.Strengths},
		{headerImprovements, &result.Improvements},
		{headerMissingSkills, &result.MissingSkills},
		{headerRoadmap, &result.Roadmap},
		{headerCourses, &result.Courses},
		{headerActionItems, &result.ActionItems},
	}
	for _, l := range lists {
		if items, ok := sections.List(l.header); ok {
			*l.dest = items
		}
	}
	return result, nil
}

// parseScore reads the leading integer of the score line, clamped to 1..10
func parseScore(sections Sections) (int, bool, error) {
	line, ok := sections.Scalar(headerScore)
	if !ok {
		return 0, false, nil
	}
	m := leadingNumber.FindStringSubmatch(line)
	if m == nil {
		return 0, false, nil
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("overall score %q: %w", m[1], err)
	}
	return min(max(score, 1), 10), true, nil
}

// HeuristicScore estimates a 3..10 score from advice-cluster keyword hits
func (a *Advisor) HeuristicScore(resume, role string) int {
	cluster := a.kb.AdviceClusterFor(role)
	if len(cluster.Keywords) == 0 {
		return 3
	}
	lower := strings.ToLower(resume)
	matches := 0
	for _, kw := range cluster.Keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	score := int(math.Round(float64(matches)/float64(len(cluster.Keywords))*10)) + 3
	return min(max(score, 3), 10)
}

func (a *Advisor) adviceFallback(ctx context.Context, role, reason string) types.AdviceOutcome {
	a.logger.Warn("Using default advice", "operation", OperationAdvice, "role", role, "reason", reason)
	a.recorder.AdviceRequested(ctx, OperationAdvice, string(types.SourceFallback))
	return types.AdviceOutcome{Advice: DefaultAdvice(), Source: types.SourceFallback, Reason: reason}
}

// ResumeFeedback asks for formatting and content feedback on a resume
func (a *Advisor) ResumeFeedback(ctx context.Context, resume string) types.FeedbackOutcome {
	prompt := buildFeedbackPrompt(a.feedback.PromptTemplate, resume)

	sections, reason := a.scan(ctx, OperationFeedback, a.feedback, prompt, feedbackHeaders)
	outcome := types.FeedbackOutcome{
		Feedback: types.FeedbackResult{
			Formatting:      sections[headerFormatting],
			ContentQuality:  sections[headerContentQuality],
			MissingElements: sections[headerMissingElements],
			Improvements:    sections[headerImprovements],
		},
		Source: types.SourceAI,
	}
	if reason != "" {
		outcome.Source = types.SourceFallback
		outcome.Reason = reason
	}
	a.recorder.AdviceRequested(ctx, OperationFeedback, string(outcome.Source))
	return outcome
}

// SkillRecommendations asks for a development plan from current skills toward role
func (a *Advisor) SkillRecommendations(ctx context.Context, skills []string, role string) types.SkillOutcome {
	prompt := buildSkillsPrompt(a.skills.PromptTemplate, skills, role)

	sections, reason := a.scan(ctx, OperationSkills, a.skills, prompt, skillsHeaders)
	outcome := types.SkillOutcome{
		CurrentSkills: slices.Clone(skills),
		TargetRole:    role,
		Plan: types.SkillPlan{
			TechnicalSkills: sections[headerTechnicalSkills],
			SoftSkills:      sections[headerSoftSkills],
			LearningPath:    sections[headerLearningPath],
			Certifications:  sections[headerCertifications],
		},
		Source: types.SourceAI,
	}
	if outcome.CurrentSkills == nil {
		outcome.CurrentSkills = []string{}
	}
	if reason != "" {
		outcome.Source = types.SourceFallback
		outcome.Reason = reason
	}
	a.recorder.AdviceRequested(ctx, OperationSkills, string(outcome.Source))
	return outcome
}

// scan runs a line-scanned operation. On failure every header maps to an
// empty list and the reason is set.
func (a *Advisor) scan(ctx context.Context, operation string, op Operation, prompt string, headers []string) (map[string][]string, string) {
	text, reason := a.generate(ctx, operation, op, prompt)
	if reason != "" {
		text = ""
	}

	sections := ScanSections(text, headers)
	if reason == "" && !anyHeader(text, headers) {
		reason = types.ReasonNoRecognizedSections
	}
	if reason != "" {
		a.logger.Warn("Returning empty result", "operation", operation, "reason", reason)
		for h := range sections {
			sections[h] = []string{}
		}
	}
	return sections, reason
}

func anyHeader(text string, headers []string) bool {
	upper := strings.ToUpper(text)
	for _, h := range headers {
		if strings.Contains(upper, h+":") {
			return true
		}
	}
	return false
}

// generate returns the model text, or a fallback reason when there is none
func (a *Advisor) generate(ctx context.Context, operation string, op Operation, prompt string) (string, string) {
	if op.Generator == nil {
		return "", types.ReasonGeneratorUnavailable
	}

	result, err := op.Generator.Generate(ctx, GenerateRequest{Prompt: prompt, MaxOutputTokens: op.MaxOutputTokens})
	if err != nil {
		reason := FallbackReason(err)
		a.logger.LogError(err, "Generation failed", "operation", operation, "reason", reason)
		return "", reason
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", types.ReasonGenerationFailed
	}
	return result.Text, ""
}
