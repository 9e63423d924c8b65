package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/attrition"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Score the built-in sample employee and print the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		return runDemo(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, s *session) error {
	record, err := attrition.SampleEmployee().Record()
	if err != nil {
		return err
	}

	loader, err := newLoader(s.config.Artifacts, s.logger)
	if err != nil {
		s.logger.Error("configuring artifact loader", zap.Error(err))
		return err
	}

	result, err := attrition.NewPredictor(loader, s.logger).Predict(cmd.Context(), record)
	if err != nil {
		s.logger.Error("error making prediction", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	if s.config.Output == outputText {
		writeRecord(out, record)
	}
	return writeResult(out, s.config.Output, result, nil)
}
