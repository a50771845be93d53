// Package knowledge holds the static role tables used for heuristic scoring.
//
// A Base is loaded once at startup and passed to the components that need
// it. Nothing in this package mutates a Base after Load returns, and the
// accessors hand out copies, so a single value is safe to share.
//
// Lookups keep the first match in declaration order. A target role that
// matches more than one profile (for example "data engineer" shares "data"
// with both data_scientist and data_analyst) silently gets the first one.
// This ambiguity is known and intentionally left as-is.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"resumatch/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed default_knowledge.yaml
var defaultKnowledge []byte

// RoleProfile is a named, ordered keyword list
type RoleProfile struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// StrengthCluster contributes Statement when any keyword is a substring of
// the text, or when Pattern matches.
type StrengthCluster struct {
	Statement string   `yaml:"statement"`
	Keywords  []string `yaml:"keywords"`
	Pattern   string   `yaml:"pattern"`

	re *regexp.Regexp
}

// Matches reports whether the cluster is present in lowercased text
func (s StrengthCluster) Matches(lower string) bool {
	for _, kw := range s.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return s.re != nil && s.re.MatchString(lower)
}

type document struct {
	KeywordProfiles       []RoleProfile     `yaml:"keywordProfiles"`
	GenericKeywords       []string          `yaml:"genericKeywords"`
	RequiredSkills        []RoleProfile     `yaml:"requiredSkills"`
	DefaultRequiredSkills []string          `yaml:"defaultRequiredSkills"`
	AdviceClusters        []RoleProfile     `yaml:"adviceClusters"`
	GenericAdviceCluster  []string          `yaml:"genericAdviceCluster"`
	IdentifiedSkills      []string          `yaml:"identifiedSkills"`
	EducationKeywords     []string          `yaml:"educationKeywords"`
	EducationLevels       []string          `yaml:"educationLevels"`
	StrengthClusters      []StrengthCluster `yaml:"strengthClusters"`
	FallbackStrength      string            `yaml:"fallbackStrength"`
	SkillVocabulary       []string          `yaml:"skillVocabulary"`
}

// Base is the immutable knowledge base
type Base struct {
	doc document
}

// Default returns the built-in knowledge base
func Default() (*Base, error) {
	return Parse(defaultKnowledge)
}

// MustDefault is Default for tests and package-level fixtures
func MustDefault() *Base {
	kb, err := Default()
	if err != nil {
		panic(err)
	}
	return kb
}

// Load reads a replacement knowledge file, or the built-in tables when path is empty
func Load(path string) (*Base, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileReadFailed, "Failed to read knowledge file", err).
			WithContext("path", path)
	}
	kb, err := Parse(data)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return kb, nil
}

// Parse decodes and validates a knowledge document
func Parse(data []byte) (*Base, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeKnowledgeBaseFailed, "Invalid knowledge YAML", err)
	}

	normalizeDocument(&doc)

	if err := validateDocument(&doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeKnowledgeBaseFailed, err.Error(), nil)
	}

	for i := range doc.StrengthClusters {
		if doc.StrengthClusters[i].Pattern == "" {
			continue
		}
		re, err := regexp.Compile(doc.StrengthClusters[i].Pattern)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeKnowledgeBaseFailed,
				fmt.Sprintf("Invalid strength pattern %q", doc.StrengthClusters[i].Pattern), err)
		}
		doc.StrengthClusters[i].re = re
	}

	return &Base{doc: doc}, nil
}

// normalizeDocument lowercases everything matched against lowercased text.
// Display lists (required skills, strength statements) keep their case.
func normalizeDocument(doc *document) {
	lowerAll := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	for i := range doc.KeywordProfiles {
		doc.KeywordProfiles[i].Name = strings.ToLower(doc.KeywordProfiles[i].Name)
		doc.KeywordProfiles[i].Keywords = lowerAll(doc.KeywordProfiles[i].Keywords)
	}
	for i := range doc.AdviceClusters {
		doc.AdviceClusters[i].Name = strings.ToLower(doc.AdviceClusters[i].Name)
		doc.AdviceClusters[i].Keywords = lowerAll(doc.AdviceClusters[i].Keywords)
	}
	for i := range doc.RequiredSkills {
		doc.RequiredSkills[i].Name = strings.ToLower(doc.RequiredSkills[i].Name)
	}
	for i := range doc.StrengthClusters {
		doc.StrengthClusters[i].Keywords = lowerAll(doc.StrengthClusters[i].Keywords)
	}
	doc.GenericKeywords = lowerAll(doc.GenericKeywords)
	doc.GenericAdviceCluster = lowerAll(doc.GenericAdviceCluster)
	doc.IdentifiedSkills = lowerAll(doc.IdentifiedSkills)
	doc.EducationKeywords = lowerAll(doc.EducationKeywords)
	doc.EducationLevels = lowerAll(doc.EducationLevels)
	doc.SkillVocabulary = lowerAll(doc.SkillVocabulary)
}

func validateDocument(doc *document) error {
	if len(doc.GenericKeywords) == 0 {
		return fmt.Errorf("genericKeywords must not be empty")
	}
	if len(doc.GenericAdviceCluster) == 0 {
		return fmt.Errorf("genericAdviceCluster must not be empty")
	}
	if len(doc.DefaultRequiredSkills) == 0 {
		return fmt.Errorf("defaultRequiredSkills must not be empty")
	}
	if doc.FallbackStrength == "" {
		return fmt.Errorf("fallbackStrength must not be empty")
	}
	for _, p := range doc.KeywordProfiles {
		if p.Name == "" || len(p.Keywords) == 0 {
			return fmt.Errorf("keyword profile %q needs a name and keywords", p.Name)
		}
	}
	for _, p := range doc.AdviceClusters {
		if p.Name == "" || len(p.Keywords) == 0 {
			return fmt.Errorf("advice cluster %q needs a name and keywords", p.Name)
		}
	}
	for _, p := range doc.RequiredSkills {
		if p.Name == "" || len(p.Keywords) == 0 {
			return fmt.Errorf("required skill profile %q needs a name and skills", p.Name)
		}
	}
	return nil
}

// KeywordProfileFor selects the scoring profile for a target role. A profile
// matches when any "_"-separated word of its name is a substring of the
// lowercased role. The second return is false when the generic list is used.
func (b *Base) KeywordProfileFor(role string) (RoleProfile, bool) {
	lower := strings.ToLower(role)
	for _, p := range b.doc.KeywordProfiles {
		if anyWordIn(strings.Split(p.Name, "_"), lower) {
			return clone(p), true
		}
	}
	return RoleProfile{Name: "generic", Keywords: slices.Clone(b.doc.GenericKeywords)}, false
}

// RequiredSkillsFor returns the required skills for the first profile whose
// whole name is a substring of the lowercased role, or the defaults.
func (b *Base) RequiredSkillsFor(role string) []string {
	lower := strings.ToLower(role)
	for _, p := range b.doc.RequiredSkills {
		if strings.Contains(lower, p.Name) {
			return slices.Clone(p.Keywords)
		}
	}
	return slices.Clone(b.doc.DefaultRequiredSkills)
}

// AdviceClusterFor picks the keyword cluster for the heuristic advice score.
// Cluster names split on spaces.
func (b *Base) AdviceClusterFor(role string) RoleProfile {
	lower := strings.ToLower(role)
	for _, p := range b.doc.AdviceClusters {
		if anyWordIn(strings.Fields(p.Name), lower) {
			return clone(p)
		}
	}
	return RoleProfile{Name: "generic", Keywords: slices.Clone(b.doc.GenericAdviceCluster)}
}

func (b *Base) SkillVocabulary() []string   { return slices.Clone(b.doc.SkillVocabulary) }
func (b *Base) IdentifiedSkills() []string  { return slices.Clone(b.doc.IdentifiedSkills) }
func (b *Base) EducationKeywords() []string { return slices.Clone(b.doc.EducationKeywords) }
func (b *Base) EducationLevels() []string   { return slices.Clone(b.doc.EducationLevels) }
func (b *Base) FallbackStrength() string    { return b.doc.FallbackStrength }

// StrengthClusters returns the clusters in declaration order
func (b *Base) StrengthClusters() []StrengthCluster {
	out := make([]StrengthCluster, len(b.doc.StrengthClusters))
	for i, s := range b.doc.StrengthClusters {
		s.Keywords = slices.Clone(s.Keywords)
		out[i] = s
	}
	return out
}

// Roles lists the keyword profile names, used for CLI help and /stats
func (b *Base) Roles() []string {
	names := make([]string, len(b.doc.KeywordProfiles))
	for i, p := range b.doc.KeywordProfiles {
		names[i] = p.Name
	}
	return names
}

func anyWordIn(words []string, s string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clone(p RoleProfile) RoleProfile {
	return RoleProfile{Name: p.Name, Keywords: slices.Clone(p.Keywords)}
}
