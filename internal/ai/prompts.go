package ai

import (
	"fmt"
	"strings"
)

// UserPrompts contains prompt templates. Placeholders are positional:
//
//	Advice:   %[1]s resume, %[2]s target role, %[3]s experience level
//	Feedback: %[1]s resume
//	Skills:   %[1]s comma separated skills, %[2]s target role
//
// A prompt file configured for an operation replaces the matching template
// and must use the same placeholders.
type UserPrompts struct {
	Advice   string
	Feedback string
	Skills   string
}

// Resume excerpt limits, in runes
const (
	adviceResumeLimit   = 4000
	feedbackResumeLimit = 3000
)

const noSkillsIdentified = "No specific skills identified"

// DefaultUserPrompts provides the built-in prompt templates
var DefaultUserPrompts = UserPrompts{
	Advice: `You are an expert career advisor and resume consultant. Analyze the following resume for someone targeting a %[2]s position at the %[3]s level.

RESUME TEXT:
%[1]s

TARGET ROLE: %[2]s
EXPERIENCE LEVEL: %[3]s

Please provide a comprehensive analysis in the following structured format. Use exactly these section headers:

OVERALL_SCORE: [Rate from 1-10 how well this resume matches the target role]

READINESS_LEVEL: [Choose one: Ready, Nearly Ready, Developing, Needs Significant Work]

STRENGTHS:
- [List 3-5 key strengths this candidate has for the target role]
- [Focus on specific skills, experiences, or achievements]

IMPROVEMENTS:
- [List 3-5 specific areas that need improvement]
- [Focus on gaps relevant to the target role]

MISSING_SKILLS:
- [List 3-7 technical skills missing for the target role]
- [Focus on skills commonly required for %[2]s]

ROADMAP:
- [Provide a 4-6 step roadmap to reach the target role]
- [Order from most important to least important]

COURSES:
- [Recommend 4-6 specific courses, certifications, or resources]
- [Mention specific platforms when helpful]

ACTION_ITEMS:
- [List 3-5 immediate action items they can take this week]
- [Focus on quick wins and important gaps]

Start every list item on its own line with "- ". Be specific, actionable, and encouraging.`,

	Feedback: `Analyze this resume and provide specific feedback on its quality, formatting, and content.
Focus on actionable improvements.

RESUME TEXT:
%[1]s

Please provide feedback in these areas:

FORMATTING:
- [Comment on structure, organization, readability]

CONTENT_QUALITY:
- [Assess the quality of descriptions and achievements]

MISSING_ELEMENTS:
- [What important sections or information is missing]

IMPROVEMENTS:
- [Specific suggestions to make the resume stronger]

Keep feedback constructive and actionable.`,

	Skills: `Given these current skills: %[1]s
Target role: %[2]s

Recommend specific skills to develop for this career path:

TECHNICAL_SKILLS:
- [List 5-7 technical skills to develop]
- [Prioritize by importance for the role]

SOFT_SKILLS:
- [List 3-5 soft skills to develop]

LEARNING_PATH:
- [Suggest a 6-month learning plan]
- [Order by priority and dependencies]

CERTIFICATIONS:
- [Recommend relevant certifications]

Be specific about technologies, tools, and methodologies.`,
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func resolvePrompt(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}

func buildAdvicePrompt(template, resume, role, level string) string {
	return fmt.Sprintf(resolvePrompt(template, DefaultUserPrompts.Advice),
		truncateRunes(resume, adviceResumeLimit), role, level)
}

func buildFeedbackPrompt(template, resume string) string {
	return fmt.Sprintf(resolvePrompt(template, DefaultUserPrompts.Feedback),
		truncateRunes(resume, feedbackResumeLimit))
}

func buildSkillsPrompt(template string, skills []string, role string) string {
	skillsText := noSkillsIdentified
	if len(skills) > 0 {
		skillsText = strings.Join(skills, ", ")
	}
	return fmt.Sprintf(resolvePrompt(template, DefaultUserPrompts.Skills), skillsText, role)
}
