package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Contact holds contact fields found in a resume. Empty means not found.
type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// ResumeRecord is the immutable result of feature extraction for one document
type ResumeRecord struct {
	RawText           string   `json:"-"`
	CleanedText       string   `json:"-"`
	Contact           Contact  `json:"contact"`
	Skills            []string `json:"skills"`
	EducationMentions []string `json:"educationMentions"`
	// ExperienceYears is nil when no estimate could be made
	ExperienceYears *int `json:"experienceYears,omitempty"`
}

// ScoreMethod names the path that produced a similarity score
type ScoreMethod string

const (
	MethodEmbedding ScoreMethod = "embedding"
	MethodKeyword   ScoreMethod = "keyword"
)

// Score is a similarity value in [0,1]
type Score struct {
	Value  float64     `json:"value"`
	Method ScoreMethod `json:"method"`
}

// MatchResult is the detailed comparison of a resume against a role
type MatchResult struct {
	Score                Score    `json:"score"`
	PresentSkills        []string `json:"presentSkills"`
	MissingSkills        []string `json:"missingSkills"`
	IdentifiedSkills     []string `json:"identifiedSkills"`
	ExperienceIndicators []string `json:"experienceIndicators"`
	EducationIndicators  []string `json:"educationIndicators"`
	Strengths            []string `json:"strengths"`
	Recommendations      []string `json:"recommendations"`
}

// AnalysisReport combines extraction and detailed matching for one resume
type AnalysisReport struct {
	Filename   string       `json:"filename,omitempty"`
	TargetRole string       `json:"targetRole"`
	Record     ResumeRecord `json:"record"`
	Match      MatchResult  `json:"match"`
}

// Readiness is how close a candidate is to the target role
type Readiness int

const (
	ReadinessDeveloping Readiness = iota
	ReadinessReady
	ReadinessNearlyReady
	ReadinessNeedsSignificantWork
)

var readinessNames = map[Readiness]string{
	ReadinessReady:                "Ready",
	ReadinessNearlyReady:          "Nearly Ready",
	ReadinessDeveloping:           "Developing",
	ReadinessNeedsSignificantWork: "Needs Significant Work",
}

func (r Readiness) String() string {
	if name, ok := readinessNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Readiness(%d)", int(r))
}

func (r Readiness) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Readiness) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseReadiness(s)
	if !ok {
		return fmt.Errorf("unknown readiness level %q", s)
	}
	*r = parsed
	return nil
}

// ParseReadiness maps free text such as "Nearly Ready - needs SQL" onto a level.
// More specific phrases are checked first so "not ready" is never read as Ready.
func ParseReadiness(s string) (Readiness, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "significant"), strings.Contains(lower, "not ready"):
		return ReadinessNeedsSignificantWork, true
	case strings.Contains(lower, "nearly"), strings.Contains(lower, "almost"):
		return ReadinessNearlyReady, true
	case strings.Contains(lower, "developing"):
		return ReadinessDeveloping, true
	case strings.Contains(lower, "ready"):
		return ReadinessReady, true
	}
	return ReadinessDeveloping, false
}

// AdviceResult is the structured career advice for one resume and role
type AdviceResult struct {
	OverallScore   int       `json:"overallScore"`
	ReadinessLevel Readiness `json:"readinessLevel"`
	Strengths      []string  `json:"strengths"`
	Improvements   []string  `json:"improvements"`
	MissingSkills  []string  `json:"missingSkills"`
	Roadmap        []string  `json:"roadmap"`
	Courses        []string  `json:"courses"`
	ActionItems    []string  `json:"actionItems"`
}

// Source tells whether a synthesis result came from the model or the static fallback
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Fallback reasons
const (
	ReasonGeneratorUnavailable = "generator_unavailable"
	ReasonGenerationFailed     = "generation_failed"
	ReasonQuotaExceeded        = "quota_exceeded"
	ReasonServiceUnavailable   = "service_unavailable"
	ReasonCircuitOpen          = "circuit_open"
	ReasonNoRecognizedSections = "no_recognized_sections"
	ReasonParseFailed          = "parse_failed"
)

// AdviceOutcome wraps advice with where it came from
type AdviceOutcome struct {
	Advice AdviceResult `json:"advice"`
	Source Source       `json:"source"`
	Reason string       `json:"reason,omitempty"`
}

// FeedbackResult is resume-quality feedback
type FeedbackResult struct {
	Formatting      []string `json:"formatting"`
	ContentQuality  []string `json:"contentQuality"`
	MissingElements []string `json:"missingElements"`
	Improvements    []string `json:"improvements"`
}

// FeedbackOutcome wraps feedback with where it came from
type FeedbackOutcome struct {
	Feedback FeedbackResult `json:"feedback"`
	Source   Source         `json:"source"`
	Reason   string         `json:"reason,omitempty"`
}

// SkillPlan is a set of skill-development recommendations
type SkillPlan struct {
	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	LearningPath    []string `json:"learningPath"`
	Certifications  []string `json:"certifications"`
}

// SkillOutcome wraps a skill plan with where it came from
type SkillOutcome struct {
	CurrentSkills []string  `json:"currentSkills"`
	TargetRole    string    `json:"targetRole"`
	Plan          SkillPlan `json:"plan"`
	Source        Source    `json:"source"`
	Reason        string    `json:"reason,omitempty"`
}

// RankedResume is one row of a ranking report
type RankedResume struct {
	Rank      int         `json:"rank"`
	Filename  string      `json:"filename"`
	Score     float64     `json:"score"`
	Method    ScoreMethod `json:"method"`
	WordCount int         `json:"wordCount"`
}

// RankFailure records a document that could not be processed
type RankFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// RankingReport is the result of ranking a batch of resumes against one role
type RankingReport struct {
	ID          string         `json:"id"`
	TargetRole  string         `json:"targetRole"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Results     []RankedResume `json:"results"`
	Failures    []RankFailure  `json:"failures,omitempty"`
}

// ExperienceLevel is one of the accepted advice levels
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "Entry Level (0-2 years)"
	LevelMid    ExperienceLevel = "Mid Level (3-5 years)"
	LevelSenior ExperienceLevel = "Senior Level (6-10 years)"
	LevelLead   ExperienceLevel = "Lead/Expert (10+ years)"
)

// ExperienceLevels lists the accepted levels in ascending order
var ExperienceLevels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior, LevelLead}

var levelAliases = map[string]ExperienceLevel{
	"entry":  LevelEntry,
	"mid":    LevelMid,
	"senior": LevelSenior,
	"lead":   LevelLead,
	"expert": LevelLead,
}

// ResolveExperienceLevel accepts a full level label or a short alias.
// An empty string resolves to the mid level.
func ResolveExperienceLevel(s string) (ExperienceLevel, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return LevelMid, nil
	}
	if level, ok := levelAliases[strings.ToLower(trimmed)]; ok {
		return level, nil
	}
	for _, level := range ExperienceLevels {
		if strings.EqualFold(trimmed, string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown experience level %q (use entry, mid, senior or lead)", s)
}
