package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumatch/internal/ranking"
	"resumatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "RankingReport", &RankingTextFormatter{})
	registry.RegisterFormatter("markdown", "RankingReport", &RankingMarkdownFormatter{})
	registry.RegisterFormatter("csv", "RankingReport", &RankingCSVFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "AdviceOutcome", &AdviceTextFormatter{})
	registry.RegisterFormatter("markdown", "AdviceOutcome", &AdviceMarkdownFormatter{})
	registry.RegisterFormatter("text", "FeedbackOutcome", &FeedbackFormatter{markdown: false})
	registry.RegisterFormatter("markdown", "FeedbackOutcome", &FeedbackFormatter{markdown: true})
	registry.RegisterFormatter("text", "SkillOutcome", &SkillsFormatter{markdown: false})
	registry.RegisterFormatter("markdown", "SkillOutcome", &SkillsFormatter{markdown: true})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.RankingReport:
		return "RankingReport"
	case types.AnalysisReport:
		return "AnalysisReport"
	case types.AdviceOutcome:
		return "AdviceOutcome"
	case types.FeedbackOutcome:
		return "FeedbackOutcome"
	case types.SkillOutcome:
		return "SkillOutcome"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// RankingTextFormatter prints a ranking as an aligned table
type RankingTextFormatter struct{}

func (f *RankingTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== RESUME RANKING: %s ===\n\n", report.TargetRole))

	if len(report.Results) == 0 {
		output.WriteString("No resumes could be ranked.\n")
	} else {
		output.WriteString(fmt.Sprintf("%-5s %-40s %-8s %-10s %s\n", "Rank", "Filename", "Score", "Method", "Words"))
		for _, r := range report.Results {
			output.WriteString(fmt.Sprintf("%-5d %-40s %-8s %-10s %d\n",
				r.Rank, r.Filename, percent(r.Score), r.Method, r.WordCount))
		}
		best, avg := summary(report.Results)
		output.WriteString(fmt.Sprintf("\nBest match: %s   Average: %s\n", percent(best), percent(avg)))
	}

	if len(report.Failures) > 0 {
		output.WriteString("\nFailed:\n")
		for _, f := range report.Failures {
			output.WriteString(fmt.Sprintf("  %s: %s\n", f.Filename, f.Error))
		}
	}
	return output.String(), nil
}

func (f *RankingTextFormatter) SupportedType() string { return "RankingReport" }

// RankingMarkdownFormatter prints a ranking as a markdown table
type RankingMarkdownFormatter struct{}

func (f *RankingMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# Resume Ranking: %s\n\n", report.TargetRole))
	output.WriteString("| Rank | Filename | Match Score | Method | Words |\n")
	output.WriteString("|------|----------|-------------|--------|-------|\n")
	for _, r := range report.Results {
		output.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d |\n",
			r.Rank, r.Filename, percent(r.Score), r.Method, r.WordCount))
	}

	if len(report.Results) > 0 {
		best, avg := summary(report.Results)
		output.WriteString(fmt.Sprintf("\n**Best match:** %s | **Average:** %s | **Total:** %d\n",
			percent(best), percent(avg), len(report.Results)))
	}
	if len(report.Failures) > 0 {
		output.WriteString("\n## Failed\n\n")
		for _, fl := range report.Failures {
			output.WriteString(fmt.Sprintf("- `%s`: %s\n", fl.Filename, fl.Error))
		}
	}
	return output.String(), nil
}

func (f *RankingMarkdownFormatter) SupportedType() string { return "RankingReport" }

// RankingCSVFormatter writes the downloadable comparison table
type RankingCSVFormatter struct{}

func (f *RankingCSVFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}
	var buf bytes.Buffer
	if err := ranking.WriteCSV(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (f *RankingCSVFormatter) SupportedType() string { return "RankingReport" }

// AnalysisTextFormatter handles text formatting for single-resume analysis
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== RESUME ANALYSIS: %s ===\n", report.TargetRole))
	if report.Filename != "" {
		output.WriteString(fmt.Sprintf("File: %s\n", report.Filename))
	}
	output.WriteString(fmt.Sprintf("Match Score: %s (%s)\n\n", percent(report.Match.Score.Value), report.Match.Score.Method))

	output.WriteString("=== CONTACT ===\n")
	writeField(&output, "Email", report.Record.Contact.Email)
	writeField(&output, "Phone", report.Record.Contact.Phone)
	writeField(&output, "LinkedIn", report.Record.Contact.LinkedIn)
	writeField(&output, "GitHub", report.Record.Contact.GitHub)
	if report.Record.ExperienceYears != nil {
		output.WriteString(fmt.Sprintf("Estimated experience: %d years\n", *report.Record.ExperienceYears))
	}
	output.WriteString("\n")

	writeTextSection(&output, "Skills", report.Record.Skills)
	writeTextSection(&output, "Education", report.Record.EducationMentions)
	writeTextSection(&output, "Present Skills", report.Match.PresentSkills)
	writeTextSection(&output, "Missing Skills", report.Match.MissingSkills)
	writeTextSection(&output, "Experience Indicators", report.Match.ExperienceIndicators)
	writeTextSection(&output, "Education Indicators", report.Match.EducationIndicators)
	writeTextSection(&output, "Strengths", report.Match.Strengths)
	writeTextSection(&output, "Recommendations", report.Match.Recommendations)

	return output.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string { return "AnalysisReport" }

// AnalysisMarkdownFormatter handles markdown formatting for single-resume analysis
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# Resume Analysis: %s\n\n", report.TargetRole))
	output.WriteString(fmt.Sprintf("**Match Score:** %s (%s)\n\n", percent(report.Match.Score.Value), report.Match.Score.Method))

	writeMarkdownSection(&output, "Skills", report.Record.Skills)
	writeMarkdownSection(&output, "Present Skills", report.Match.PresentSkills)
	writeMarkdownSection(&output, "Missing Skills", report.Match.MissingSkills)
	writeMarkdownSection(&output, "Experience", report.Match.ExperienceIndicators)
	writeMarkdownSection(&output, "Education", report.Match.EducationIndicators)
	writeMarkdownSection(&output, "Strengths", report.Match.Strengths)
	writeMarkdownSection(&output, "Recommendations", report.Match.Recommendations)

	return output.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string { return "AnalysisReport" }

// AdviceTextFormatter handles text formatting for career advice
type AdviceTextFormatter struct{}

func (f *AdviceTextFormatter) Format(data any) (string, error) {
	outcome, ok := data.(types.AdviceOutcome)
	if !ok {
		return "", fmt.Errorf("expected AdviceOutcome, got %T", data)
	}
	advice := outcome.Advice

	var output strings.Builder
	output.WriteString("=== CAREER ADVICE ===\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/10\n", advice.OverallScore))
	output.WriteString(fmt.Sprintf("Readiness: %s\n", advice.ReadinessLevel))
	writeSourceNote(&output, outcome.Source, outcome.Reason)
	output.WriteString("\n")

	writeTextSection(&output, "Strengths", advice.Strengths)
	writeTextSection(&output, "Areas for Improvement", advice.Improvements)
	writeTextSection(&output, "Missing Skills", advice.MissingSkills)
	writeNumberedSection(&output, "Career Roadmap", advice.Roadmap)
	writeTextSection(&output, "Recommended Courses", advice.Courses)
	writeTextSection(&output, "Action Items", advice.ActionItems)

	return output.String(), nil
}

func (f *AdviceTextFormatter) SupportedType() string { return "AdviceOutcome" }

// AdviceMarkdownFormatter handles markdown formatting for career advice
type AdviceMarkdownFormatter struct{}

func (f *AdviceMarkdownFormatter) Format(data any) (string, error) {
	outcome, ok := data.(types.AdviceOutcome)
	if !ok {
		return "", fmt.Errorf("expected AdviceOutcome, got %T", data)
	}
	advice := outcome.Advice

	var output strings.Builder
	output.WriteString("# Career Advice\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/10  \n", advice.OverallScore))
	output.WriteString(fmt.Sprintf("**Readiness:** %s\n\n", advice.ReadinessLevel))
	if outcome.Source == types.SourceFallback {
		output.WriteString(fmt.Sprintf("> Generic advice shown (%s)\n\n", outcome.Reason))
	}

	writeMarkdownSection(&output, "Strengths", advice.Strengths)
	writeMarkdownSection(&output, "Areas for Improvement", advice.Improvements)
	writeMarkdownSection(&output, "Missing Skills", advice.MissingSkills)

	output.WriteString("## Career Roadmap\n\n")
	for i, step := range advice.Roadmap {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	output.WriteString("\n")

	writeMarkdownSection(&output, "Recommended Courses", advice.Courses)
	writeMarkdownSection(&output, "Action Items", advice.ActionItems)

	return output.String(), nil
}

func (f *AdviceMarkdownFormatter) SupportedType() string { return "AdviceOutcome" }

// FeedbackFormatter handles text and markdown output for resume feedback
type FeedbackFormatter struct {
	markdown bool
}

func (f *FeedbackFormatter) Format(data any) (string, error) {
	outcome, ok := data.(types.FeedbackOutcome)
	if !ok {
		return "", fmt.Errorf("expected FeedbackOutcome, got %T", data)
	}

	sections := []struct {
		title string
		items []string
	}{
		{"Formatting", outcome.Feedback.Formatting},
		{"Content Quality", outcome.Feedback.ContentQuality},
		{"Missing Elements", outcome.Feedback.MissingElements},
		{"Improvements", outcome.Feedback.Improvements},
	}

	var output strings.Builder
	if f.markdown {
		output.WriteString("# Resume Feedback\n\n")
	} else {
		output.WriteString("=== RESUME FEEDBACK ===\n")
	}
	writeSourceNote(&output, outcome.Source, outcome.Reason)
	output.WriteString("\n")
	for _, s := range sections {
		if f.markdown {
			writeMarkdownSection(&output, s.title, s.items)
		} else {
			writeTextSection(&output, s.title, s.items)
		}
	}
	return output.String(), nil
}

func (f *FeedbackFormatter) SupportedType() string { return "FeedbackOutcome" }

// SkillsFormatter handles text and markdown output for skill recommendations
type SkillsFormatter struct {
	markdown bool
}

func (f *SkillsFormatter) Format(data any) (string, error) {
	outcome, ok := data.(types.SkillOutcome)
	if !ok {
		return "", fmt.Errorf("expected SkillOutcome, got %T", data)
	}

	sections := []struct {
		title string
		items []string
	}{
		{"Technical Skills", outcome.Plan.TechnicalSkills},
		{"Soft Skills", outcome.Plan.SoftSkills},
		{"Learning Path", outcome.Plan.LearningPath},
		{"Certifications", outcome.Plan.Certifications},
	}

	var output strings.Builder
	current := strings.Join(outcome.CurrentSkills, ", ")
	if current == "" {
		current = "none identified"
	}
	if f.markdown {
		output.WriteString(fmt.Sprintf("# Skill Plan: %s\n\n**Current skills:** %s\n\n", outcome.TargetRole, current))
	} else {
		output.WriteString(fmt.Sprintf("=== SKILL PLAN: %s ===\nCurrent skills: %s\n", outcome.TargetRole, current))
	}
	writeSourceNote(&output, outcome.Source, outcome.Reason)
	output.WriteString("\n")
	for _, s := range sections {
		if f.markdown {
			writeMarkdownSection(&output, s.title, s.items)
		} else {
			writeTextSection(&output, s.title, s.items)
		}
	}
	return output.String(), nil
}

func (f *SkillsFormatter) SupportedType() string { return "SkillOutcome" }

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func summary(results []types.RankedResume) (best, avg float64) {
	var total float64
	for _, r := range results {
		best = max(best, r.Score)
		total += r.Score
	}
	return best, total / float64(len(results))
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", label, value))
	}
}

func writeSourceNote(b *strings.Builder, source types.Source, reason string) {
	if source == types.SourceFallback {
		b.WriteString(fmt.Sprintf("Note: AI advice unavailable (%s)\n", reason))
	}
}

func writeTextSection(b *strings.Builder, title string, items []string) {
	b.WriteString(strings.ToUpper(title))
	b.WriteString(":\n")
	if len(items) == 0 {
		b.WriteString("  (none)\n\n")
		return
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  - %s\n", item))
	}
	b.WriteString("\n")
}

func writeNumberedSection(b *strings.Builder, title string, items []string) {
	b.WriteString(strings.ToUpper(title))
	b.WriteString(":\n")
	for i, item := range items {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
	}
	b.WriteString("\n")
}

func writeMarkdownSection(b *strings.Builder, title string, items []string) {
	b.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(items) == 0 {
		b.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s\n", item))
	}
	b.WriteString("\n")
}
