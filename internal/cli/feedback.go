package cli

import (
	"context"

	"resumatch/internal/common"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [resume-file]",
	Short: "Get formatting and content feedback on a resume",
	Long: `Ask the configured AI model to review a resume's formatting, content
quality and missing elements, and to suggest improvements. When the AI is
not available the result is empty and marked as fallback.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: outputPreRun(&feedbackConfig),
	RunE:    runFeedback,
}

var feedbackConfig common.CommandConfig

func init() {
	addOutputFlags(feedbackCmd, &feedbackConfig)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	return common.RunResumeCommand(cmd.Context(), common.NewRunnerWithWriter(cmd.OutOrStdout(), logger), feedbackConfig, args[0],
		func(ctx context.Context, in common.ResumeInput) (types.FeedbackOutcome, error) {
			return a.Feedback(ctx, in.Raw), nil
		})
}
