package cli

import (
	"fmt"
	"path/filepath"

	"resumatch/internal/common"
	"resumatch/internal/errors"
	"resumatch/internal/formatters"
	"resumatch/internal/ranking"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [resume-files...] --role <role>",
	Short: "Rank several resumes against one job role",
	Long: `Score every resume against the target role and print them in order of
match. Files that cannot be read are reported and skipped; the rest of the
batch is still ranked.

Use --csv-out to also save the ranking as CSV (Rank, Filename, Match_Score,
Word_Count). Pass --csv-out=auto to use resume_comparison_<role>.csv.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: outputPreRun(&rankConfig),
	RunE:    runRank,
}

var (
	rankConfig common.CommandConfig
	rankRole   string
	rankCSVOut string
)

func init() {
	addOutputFlags(rankCmd, &rankConfig)
	rankCmd.Flags().StringVarP(&rankRole, "role", "r", "", "Target job role (required)")
	rankCmd.Flags().StringVar(&rankCSVOut, "csv-out", "", "Also write the ranking as CSV to this path")
	_ = rankCmd.MarkFlagRequired("role")
}

func runRank(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	docs := make([]ranking.Document, 0, len(args))
	for _, path := range args {
		docs = append(docs, ranking.Document{Filename: filepath.Base(path), Path: path})
	}

	logger.Info("Starting resume ranking",
		"role", rankRole,
		"files", len(docs),
		"output_format", rankConfig.OutputFormat)

	report := a.Ranker.Rank(cmd.Context(), docs, rankRole)
	if len(report.Results) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("No resumes could be processed (%d failed)", len(report.Failures)), nil)
	}

	if err := common.NewOutputHandlerWithWriter(cmd.OutOrStdout(), logger).HandleOutput(report, rankConfig); err != nil {
		return err
	}

	if rankCSVOut != "" {
		target := rankCSVOut
		if target == "auto" {
			target = ranking.CSVFilename(rankRole)
		}
		csv, err := formatters.NewFormatterRegistry().Format(report, "csv")
		if err != nil {
			return err
		}
		if err := common.NewFileProcessor(logger).WriteFile(target, csv); err != nil {
			return err
		}
		logger.Info("Ranking CSV written", "file", target)
	}

	logger.Info("Resume ranking completed successfully",
		"ranked", len(report.Results),
		"failed", len(report.Failures))
	return nil
}
