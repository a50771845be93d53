package ranking

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumatch/internal/document"
	"resumatch/internal/knowledge"
	"resumatch/internal/scorer"
	"resumatch/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoResumes = []struct {
	name string
	text string
}{
	{"Resume_A_DataScientist.txt", `
        Jane Smith, Data Scientist
        5 years experience in machine learning and data analysis
        Expert in Python, pandas, numpy, scikit-learn, tensorflow
        Built predictive models for customer churn and sales forecasting
        PhD in Statistics, experienced with SQL, Tableau, AWS
        `},
	{"Resume_B_SoftwareEngineer.txt", `
        Mike Johnson, Software Engineer
        3 years experience in full-stack development
        Proficient in JavaScript, React, Node.js, Python
        Built web applications and REST APIs
        Bachelor's in Computer Science, familiar with Git, Docker
        `},
	{"Resume_C_DataAnalyst.txt", `
        Sarah Wilson, Data Analyst
        2 years experience in business intelligence
        Strong skills in SQL, Excel, Tableau, Power BI
        Created dashboards and reports for executive team
        Master's in Business Analytics, some Python experience
        `},
}

func writeDocs(t *testing.T) []Document {
	t.Helper()
	dir := t.TempDir()
	docs := make([]Document, 0, len(demoResumes))
	for _, r := range demoResumes {
		path := filepath.Join(dir, r.name)
		require.NoError(t, os.WriteFile(path, []byte(r.text), 0600))
		docs = append(docs, Document{Filename: r.name, Path: path})
	}
	return docs
}

func newRanker() *Ranker {
	kb := knowledge.MustDefault()
	return NewRanker(document.NewAutoExtractor(), scorer.New(kb, nil, nil, nil), nil, nil)
}

func TestRankDemoResumes(t *testing.T) {
	report := newRanker().Rank(context.Background(), writeDocs(t), "Data Scientist")

	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Failures)
	assert.Equal(t, "Data Scientist", report.TargetRole)
	_, err := uuid.Parse(report.ID)
	assert.NoError(t, err)

	// keyword path: A 11/28+0.2, C 6/28, B 2/28
	names := []string{report.Results[0].Filename, report.Results[1].Filename, report.Results[2].Filename}
	assert.Equal(t, []string{"Resume_A_DataScientist.txt", "Resume_C_DataAnalyst.txt", "Resume_B_SoftwareEngineer.txt"}, names)
	assert.InDelta(t, 11.0/28+0.2, report.Results[0].Score, 1e-9)
	assert.InDelta(t, 6.0/28, report.Results[1].Score, 1e-9)
	assert.InDelta(t, 2.0/28, report.Results[2].Score, 1e-9)

	for i, r := range report.Results {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, types.MethodKeyword, r.Method)
		assert.Positive(t, r.WordCount)
	}
}

type fixedScorer map[string]float64

func (f fixedScorer) Similarity(_ context.Context, resume, _ string) types.Score {
	return types.Score{Value: f[strings.TrimSpace(resume)], Method: types.MethodKeyword}
}

func TestRankStableAndFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) Document {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0600))
		return Document{Filename: name, Path: path}
	}

	docs := []Document{
		write("first.txt", "alpha"),
		{Filename: "missing.pdf", Path: filepath.Join(dir, "missing.pdf")},
		write("second.txt", "beta"),
		write("third.txt", "gamma  delta, epsilon"),
		{Filename: "upload.txt", Reader: strings.NewReader("beta")},
	}
	scores := fixedScorer{"alpha": 0.5, "beta": 0.5, "gamma delta, epsilon": 0.9}

	ranker := NewRanker(document.NewAutoExtractor(), scores, nil, nil)
	ranker.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	report := ranker.Rank(context.Background(), docs, "Chef")

	require.Len(t, report.Results, 4)
	assert.Equal(t, "third.txt", report.Results[0].Filename)
	assert.Equal(t, 3, report.Results[0].WordCount)
	// equal scores keep input order
	assert.Equal(t, "first.txt", report.Results[1].Filename)
	assert.Equal(t, "second.txt", report.Results[2].Filename)
	assert.Equal(t, "upload.txt", report.Results[3].Filename)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "missing.pdf", report.Failures[0].Filename)
	assert.Contains(t, report.Failures[0].Error, "FILE_NOT_FOUND")
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), report.GeneratedAt)
}

func TestRankCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newRanker().Rank(ctx, writeDocs(t), "Data Scientist")
	assert.Empty(t, report.Results)
	assert.Len(t, report.Failures, 3)
}

func TestWriteCSV(t *testing.T) {
	report := types.RankingReport{
		Results: []types.RankedResume{
			{Rank: 1, Filename: "a.pdf", Score: 0.59286, WordCount: 40},
			{Rank: 2, Filename: "b, jr.pdf", Score: 0.1, WordCount: 7},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))
	assert.Equal(t, "Rank,Filename,Match_Score,Word_Count\n1,a.pdf,0.593,40\n2,\"b, jr.pdf\",0.100,7\n", buf.String())
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "resume_comparison_Data_Scientist.csv", CSVFilename("Data Scientist"))
	assert.Equal(t, "resume_comparison_Chef.csv", CSVFilename("Chef"))
}
