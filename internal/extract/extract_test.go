package extract

import (
	"testing"

	"resumatch/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `John Doe
Software Engineer
Email: john.doe@email.com | Phone: (555) 123-4567
LinkedIn: linkedin.com/in/johndoe | GitHub: github.com/johndoe

EXPERIENCE
Senior Software Engineer | Tech Corp | 2020 - Present
- Developed web applications using Python, Django, and React
- Led a team of 5 developers on microservices architecture
- Implemented CI/CD pipelines using Docker and Kubernetes

Software Engineer | StartupXYZ | 2018 - 2020
- Built REST APIs using Node.js and Express
- Worked with PostgreSQL and MongoDB databases

EDUCATION
Bachelor of Science in Computer Science
University of Technology | 2014 - 2018

SKILLS
Python, JavaScript, React, Node.js, Docker, Kubernetes, AWS, PostgreSQL, C++, C#
`

func TestExtractContact(t *testing.T) {
	c := ExtractContact(sampleResume)
	assert.Equal(t, "john.doe@email.com", c.Email)
	assert.Equal(t, "(555) 123-4567", c.Phone)
	assert.Equal(t, "linkedin.com/in/johndoe", c.LinkedIn)
	assert.Equal(t, "github.com/johndoe", c.GitHub)
}

func TestExtractContactMissingFields(t *testing.T) {
	c := ExtractContact("Reach me at LINKEDIN.COM/IN/Jane-Doe")
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Phone)
	assert.Equal(t, "LINKEDIN.COM/IN/Jane-Doe", c.LinkedIn)
	assert.Empty(t, c.GitHub)
}

func TestExtractContactInternationalPhone(t *testing.T) {
	// the first pattern already finds the local part, so it wins
	c := ExtractContact("call +44 207 555 1234")
	assert.Equal(t, "207 555 1234", c.Phone)
}

func TestExtractSkills(t *testing.T) {
	vocab := knowledge.MustDefault().SkillVocabulary()

	t.Run("sample resume", func(t *testing.T) {
		skills := ExtractSkills(sampleResume, vocab)
		for _, want := range []string{"Python", "Javascript", "C++", "C#", "React", "Node.Js", "Express", "Django", "Postgresql", "Mongodb", "Aws", "Docker", "Kubernetes", "Microservices", "Rest"} {
			assert.Contains(t, skills, want)
		}
		// "java" only appears inside "javascript"
		assert.NotContains(t, skills, "Java")
		assert.NotContains(t, skills, "R")
	})

	t.Run("case insensitive without duplicates", func(t *testing.T) {
		skills := ExtractSkills("Python python PYTHON and more Python", vocab)
		assert.Equal(t, []string{"Python"}, skills)
	})

	t.Run("whole words only", func(t *testing.T) {
		skills := ExtractSkills("Gopher friendly, rusty, restful", vocab)
		assert.Empty(t, skills)
	})

	t.Run("vocabulary order", func(t *testing.T) {
		skills := ExtractSkills("docker, sql and python; power bi", vocab)
		assert.Equal(t, []string{"Python", "Sql", "Docker", "Power Bi"}, skills)
	})

	t.Run("duplicate vocabulary entries collapse", func(t *testing.T) {
		skills := ExtractSkills("uses Go daily", []string{"go", "Go", " go "})
		assert.Equal(t, []string{"Go"}, skills)
	})
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"python":       "Python",
		"node.js":      "Node.Js",
		"scikit-learn": "Scikit-Learn",
		"c++":          "C++",
		"neo4j":        "Neo4J",
		"power bi":     "Power Bi",
	}
	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, TitleCase(input))
		})
	}
}

func TestExtractEducation(t *testing.T) {
	keywords := knowledge.MustDefault().EducationKeywords()

	t.Run("sample resume", func(t *testing.T) {
		entries := ExtractEducation(sampleResume, keywords)
		assert.Equal(t, []string{
			"EDUCATION Bachelor of Science in Computer Science",
			"Bachelor of Science in Computer Science University of Technology | 2014 - 2018",
			"University of Technology | 2014 - 2018",
		}, entries)
	})

	t.Run("caps at three and drops short lines", func(t *testing.T) {
		text := "PhD\n\nMaster of Arts, Some College\n\nBachelor of Science, State University\n\nAssociate degree, Community College\n"
		entries := ExtractEducation(text, keywords)
		assert.Equal(t, []string{
			"Master of Arts, Some College",
			"Bachelor of Science, State University",
			"Associate degree, Community College",
		}, entries)
	})

	t.Run("long next line is not appended", func(t *testing.T) {
		long := "x"
		for len(long) < 120 {
			long += " filler"
		}
		entries := ExtractEducation("Graduated from Some University\n"+long, keywords)
		assert.Equal(t, []string{"Graduated from Some University"}, entries)
	})
}

func TestEstimateExperienceYears(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
		ok       bool
	}{
		{name: "explicit phrase", text: "I have 5 years of experience in Go", expected: 5, ok: true},
		{name: "plus and no of", text: "10+ years experience", expected: 10, ok: true},
		{name: "years in field", text: "3 years in fintech", expected: 3, ok: true},
		{name: "experience colon", text: "Experience: 7 years", expected: 7, ok: true},
		{name: "first pattern wins", text: "2 years in banking and 9 years of experience overall", expected: 9, ok: true},
		{name: "year tokens with duplicates", text: "2016 - 2018, 2018 - 2020", expected: 4, ok: true},
		{name: "capped at fifty", text: "1901 1950 1990 2020", expected: 50, ok: true},
		{name: "too few year tokens", text: "2016 - 2020 and 2021", ok: false},
		{name: "nothing", text: "enthusiastic learner", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			years, ok := EstimateExperienceYears(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, years)
			}
		})
	}
}

func TestBuildRecord(t *testing.T) {
	record := BuildRecord(sampleResume, knowledge.MustDefault())

	assert.Equal(t, sampleResume, record.RawText)
	assert.NotContains(t, record.CleanedText, "\n")
	assert.Equal(t, "john.doe@email.com", record.Contact.Email)
	assert.Contains(t, record.Skills, "C++")
	assert.Len(t, record.EducationMentions, 3)
	require.NotNil(t, record.ExperienceYears)
	// 2020 2018 2020 2014 2018 spread across the work history
	assert.Equal(t, 6, *record.ExperienceYears)

	empty := BuildRecord("", knowledge.MustDefault())
	assert.Empty(t, empty.CleanedText)
	assert.Empty(t, empty.Skills)
	assert.Nil(t, empty.ExperienceYears)
}
