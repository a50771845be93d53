package cli

import (
	"context"
	"path/filepath"

	"resumatch/internal/common"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] --role <role>",
	Short: "Analyze one resume against a job role",
	Long: `Extract contact details, skills, education and experience from a resume
and explain how well it matches the target role.

The analysis includes:
- Match score and the method used (embedding or keyword)
- Required skills present and missing for the role
- Experience and education indicators
- Strengths and recommendations`,
	Args:    cobra.ExactArgs(1),
	PreRunE: outputPreRun(&analyzeConfig),
	RunE:    runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeRole   string
)

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Target job role (required)")
	_ = analyzeCmd.MarkFlagRequired("role")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	err = common.RunResumeCommand(cmd.Context(), common.NewRunnerWithWriter(cmd.OutOrStdout(), logger), analyzeConfig, args[0],
		func(ctx context.Context, in common.ResumeInput) (types.AnalysisReport, error) {
			return a.Analyze(ctx, filepath.Base(in.Filename), in.Raw, analyzeRole), nil
		})
	if err != nil {
		return err
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
