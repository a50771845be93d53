package ranking

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"resumatch/internal/types"
)

var csvHeader = []string{"Rank", "Filename", "Match_Score", "Word_Count"}

// WriteCSV writes the ranked results, one row per resume
func WriteCSV(w io.Writer, report types.RankingReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range report.Results {
		row := []string{
			strconv.Itoa(r.Rank),
			r.Filename,
			fmt.Sprintf("%.3f", r.Score),
			strconv.Itoa(r.WordCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename is the suggested download name for a role's ranking
func CSVFilename(role string) string {
	return fmt.Sprintf("resume_comparison_%s.csv", strings.ReplaceAll(role, " ", "_"))
}
