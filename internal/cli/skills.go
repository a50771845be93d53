package cli

import (
	"context"

	"resumatch/internal/common"
	"resumatch/internal/types"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [resume-file] --role <role>",
	Short: "Recommend skills to develop for a target role",
	Long: `Extract the skills a resume already shows, then ask the configured AI
model for technical skills, soft skills, a learning path and certifications
to work toward the target role.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: outputPreRun(&skillsConfig),
	RunE:    runSkills,
}

var (
	skillsConfig common.CommandConfig
	skillsRole   string
)

func init() {
	addOutputFlags(skillsCmd, &skillsConfig)
	skillsCmd.Flags().StringVarP(&skillsRole, "role", "r", "", "Target job role (required)")
	_ = skillsCmd.MarkFlagRequired("role")
}

func runSkills(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	return common.RunResumeCommand(cmd.Context(), common.NewRunnerWithWriter(cmd.OutOrStdout(), logger), skillsConfig, args[0],
		func(ctx context.Context, in common.ResumeInput) (types.SkillOutcome, error) {
			return a.Skills(ctx, in.Raw, skillsRole), nil
		})
}
