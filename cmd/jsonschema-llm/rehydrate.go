package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
	"github.com/dotslashderek/jsonschema-llm/rehydrate"
)

func newRehydrateCmd(log *logrus.Logger) *cobra.Command {
	var dataOut, warningsOut string

	cmd := &cobra.Command{
		Use:   "rehydrate <llm-output.json> <codec.json> <original-schema.json>",
		Short: "Reconstruct LLM output into the original schema's shape using a codec sidecar",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			llmOutput, err := readJSONFile(args[0])
			if err != nil {
				return err
			}

			codec, err := readCodecFile(args[1])
			if err != nil {
				return err
			}

			originalSchema, err := readJSONFile(args[2])
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"transforms": len(codec.Transforms),
			}).Debug("applying codec transforms")

			result, err := rehydrate.Rehydrate(llmOutput, codec, originalSchema)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				log.WithFields(logrus.Fields{
					"kind":       w.Kind,
					"dataPath":   w.DataPath,
					"schemaPath": w.SchemaPath,
				}).Warn(w.Message)
			}
			log.WithFields(logrus.Fields{
				"warnings": len(result.Warnings),
			}).Info("rehydration complete")

			if err := writeJSONFile(dataOut, result.Data); err != nil {
				return err
			}
			if len(result.Warnings) == 0 {
				return nil
			}
			return writeJSONFile(warningsOut, result.Warnings)
		},
	}

	cmd.Flags().StringVar(&dataOut, "data-out", "-",
		"where to write the reconstructed data (- for stdout)")
	cmd.Flags().StringVar(&warningsOut, "warnings-out", "warnings.json",
		"where to write advisory warnings, if any were raised")

	return cmd
}

// readCodecFile decodes a codec sidecar, dispatching through Codec's own
// UnmarshalJSON so tagged transform variants are reconstructed by type.
func readCodecFile(path string) (*jsonschemallm.Codec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	var codec jsonschemallm.Codec
	if err := json.Unmarshal(raw, &codec); err != nil {
		return nil, errors.Wrapf(err, "parsing codec from %s", path)
	}
	return &codec, nil
}
