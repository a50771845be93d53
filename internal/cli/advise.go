package cli

import (
	"context"

	"resumatch/internal/common"
	"resumatch/internal/errors"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var adviseCmd = &cobra.Command{
	Use:   "advise [resume-file] --role <role>",
	Short: "Get career advice for a target role",
	Long: `Ask the configured AI model for a structured career assessment: an
overall score, readiness level, strengths, improvements, missing skills, a
roadmap, courses and action items.

--level accepts entry, mid, senior or lead (default mid). When the AI is not
available a generic assessment is returned and marked as fallback.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := types.ResolveExperienceLevel(adviseLevelFlag)
		if err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidInput, err.Error(), nil)
		}
		adviseLevel = level
		return outputPreRun(&adviseConfig)(cmd, args)
	},
	RunE: runAdvise,
}

var (
	adviseConfig    common.CommandConfig
	adviseRole      string
	adviseLevelFlag string
	adviseLevel     types.ExperienceLevel
)

func init() {
	addOutputFlags(adviseCmd, &adviseConfig)
	adviseCmd.Flags().StringVarP(&adviseRole, "role", "r", "", "Target job role (required)")
	adviseCmd.Flags().StringVarP(&adviseLevelFlag, "level", "l", "mid", "Experience level: entry, mid, senior or lead")
	_ = adviseCmd.MarkFlagRequired("role")

	_ = adviseCmd.RegisterFlagCompletionFunc("level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"entry", "mid", "senior", "lead"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAdvise(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	var source types.Source
	err = common.RunResumeCommand(cmd.Context(), common.NewRunnerWithWriter(cmd.OutOrStdout(), logger), adviseConfig, args[0],
		func(ctx context.Context, in common.ResumeInput) (types.AdviceOutcome, error) {
			outcome := a.Advise(ctx, in.Raw, adviseRole, adviseLevel)
			source = outcome.Source
			return outcome, nil
		})
	if err != nil {
		return err
	}
	logger.Info("Career advice completed", "role", adviseRole, "level", string(adviseLevel), "source", string(source))
	return nil
}
