package main

import (
	"fmt"

	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
	"github.com/spf13/cobra"
)

var (
	estimateGender string
	estimateWeight float64
	estimateGoal   string
	estimateAbdom  string
	estimateUpper  string
	estimateLower  string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Runs the body-fat and target estimation without an account",
	Example: `  nutrascan estimate --gender M --weight 80 --goal manter \
    --abdomen Normal --upper-body Normal --lower-body Normal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		answers := nutrition.Answers{
			Gender: model.Gender(estimateGender),
			Weight: estimateWeight,
			Goal:   model.Goal(estimateGoal),
		}
		var err error
		if answers.Abdomen, err = nutrition.ParseBodyDescriptor(estimateAbdom); err != nil {
			return err
		}
		if answers.UpperBody, err = nutrition.ParseBodyDescriptor(estimateUpper); err != nil {
			return err
		}
		if answers.LowerBody, err = nutrition.ParseBodyDescriptor(estimateLower); err != nil {
			return err
		}

		estimate, err := nutrition.Run(answers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Body fat:\t%g%%\n", estimate.BodyFat)
		fmt.Fprintf(out, "TDEE:\t\t%g kcal\n", estimate.TDEE)
		fmt.Fprintf(out, "Targets:\t%g kcal | P %gg | C %gg | F %gg\n",
			estimate.Targets.Calories, estimate.Targets.Protein, estimate.Targets.Carbs, estimate.Targets.Fat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().StringVar(&estimateGender, "gender", "M", "Gender (M or F)")
	estimateCmd.Flags().Float64Var(&estimateWeight, "weight", 0, "Weight in kg")
	estimateCmd.Flags().StringVar(&estimateGoal, "goal", string(model.GoalMaintain), "Goal: emagrecer, manter or hipertrofia")
	estimateCmd.Flags().StringVar(&estimateAbdom, "abdomen", "", "Abdomen descriptor label")
	estimateCmd.Flags().StringVar(&estimateUpper, "upper-body", "", "Upper body descriptor label")
	estimateCmd.Flags().StringVar(&estimateLower, "lower-body", "", "Lower body descriptor label")
	_ = estimateCmd.MarkFlagRequired("weight")
}
