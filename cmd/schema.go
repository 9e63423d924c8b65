package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/attrition"
	"github.com/spigell/attrition/internal/model"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the features the loaded artifacts require",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		loader, err := newLoader(s.config.Artifacts, s.logger)
		if err != nil {
			s.logger.Error("configuring artifact loader", zap.Error(err))
			return err
		}

		artifacts, err := loader.Load(cmd.Context())
		if err != nil {
			s.logger.Error("loading artifacts", zap.Error(err))
			return err
		}

		writeSchema(cmd.OutOrStdout(), artifacts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func writeSchema(w io.Writer, artifacts *attrition.Artifacts) {
	vocab := model.Categories(artifacts.Encoder)

	fmt.Fprintf(w, "Categorical features (encoded width %d):\n", artifacts.Encoder.Width())
	for _, name := range artifacts.Encoder.FeatureNames() {
		note := ""
		if name == attrition.FeatureSalaryBand {
			note = fmt.Sprintf(" (derived from %s)", attrition.FeatureMonthlyIncome)
		}
		if items := vocab[name]; len(items) > 0 {
			fmt.Fprintf(w, "  %s%s: %s\n", name, note, strings.Join(items, " | "))
		} else {
			fmt.Fprintf(w, "  %s%s\n", name, note)
		}
	}

	fmt.Fprintf(w, "Numerical features (scaled width %d):\n", artifacts.Scaler.Width())
	for _, name := range artifacts.Scaler.FeatureNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}

	fmt.Fprintf(w, "Model input width: %d\n", artifacts.Classifier.NumFeatures())
}
