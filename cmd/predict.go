package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/ai"
	"github.com/spigell/attrition/internal/artifact"
	"github.com/spigell/attrition/internal/attrition"
	"github.com/spigell/attrition/internal/model"
)

type predictOptions struct {
	input       string
	assignments []string
	interactive bool
	explain     bool
}

var predictOpts predictOptions

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict attrition for one employee record",
	Example: `  attrition predict --input employee.json
  attrition predict -s Age=35 -s OverTime=Yes -s MonthlyIncome=5000 -i
  cat employee.yaml | attrition predict --input - --output json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		return runPredict(cmd.Context(), s, predictOpts, terminalPrompter{}, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVarP(&predictOpts.input, "input", "f", "", "JSON or YAML file with the employee features (- for stdin)")
	predictCmd.Flags().StringArrayVarP(&predictOpts.assignments, "set", "s", nil, "set a feature, Key=Value (repeatable, overrides --input)")
	predictCmd.Flags().BoolVarP(&predictOpts.interactive, "interactive", "i", false, "prompt for required features missing from the input")
	predictCmd.Flags().BoolVar(&predictOpts.explain, "explain", false, "ask the configured AI provider to explain the prediction")
	predictCmd.Flags().StringP("output", "o", outputText, "output format: text or json")

	viper.BindPFlag("output", predictCmd.Flags().Lookup("output"))
}

func runPredict(ctx context.Context, s *session, opts predictOptions, p prompter, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	record := attrition.Record{}
	if opts.input != "" {
		var err error
		record, err = readRecord(opts.input, stdin)
		if err != nil {
			s.logger.Error("reading the employee record", zap.Error(err))
			return err
		}
	}

	if err := applyAssignments(record, opts.assignments); err != nil {
		s.logger.Error("parsing feature assignments", zap.Error(err))
		return err
	}

	loader, err := newLoader(s.config.Artifacts, s.logger)
	if err != nil {
		s.logger.Error("configuring artifact loader", zap.Error(err))
		return err
	}

	if opts.interactive {
		// Prompting and scoring must see the same artifact set.
		loader = artifact.NewCached(loader)

		artifacts, err := loader.Load(ctx)
		if err != nil {
			s.logger.Error("loading artifacts", zap.Error(err))
			return err
		}

		required := attrition.RequiredFeatures(artifacts.Encoder.FeatureNames(), artifacts.Scaler.FeatureNames())
		if err := promptMissing(p, record, required, model.Categories(artifacts.Encoder)); err != nil {
			s.logger.Error("collecting features", zap.Error(err))
			return err
		}
	}

	predictor := attrition.NewPredictor(loader, s.logger)

	result, err := predictor.Predict(ctx, record)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if errors.Is(err, attrition.ErrMissingFeature) {
			fields = append(fields, zap.String("hint", "supply the missing features with --input or --set, or run with --interactive"))
		}
		if errors.Is(err, attrition.ErrArtifactNotFound) {
			fields = append(fields, zap.String("hint", "set --model-dir, --registry-url or the 'artifacts' section of the config"))
		}
		s.logger.Error("predicting attrition", fields...)
		return err
	}

	var advice *ai.Advice
	if opts.explain {
		advice = explain(ctx, s, record, result)
	}

	return writeResult(out, s.config.Output, result, advice)
}

// explain returns AI advice for the prediction, or nil when it is unavailable.
// Advice is best effort: failures are logged and the prediction still prints.
func explain(ctx context.Context, s *session, record attrition.Record, result attrition.Result) *ai.Advice {
	advisor, err := newAdvisor(ctx, s.config.AI, s.logger)
	if err != nil {
		s.logger.Warn("skipping explanation", zap.Error(err))
		return nil
	}

	engineered, err := attrition.Engineer(record)
	if err != nil {
		engineered = record
	}

	advice, err := advisor.Advise(ctx, engineered, result)
	if err != nil {
		s.logger.Warn("explanation failed", zap.Error(err))
		return nil
	}

	return advice
}
