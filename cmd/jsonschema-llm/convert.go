package main

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
	"github.com/dotslashderek/jsonschema-llm/cmd/jsonschema-llm/internal/cliconfig"
)

func newConvertCmd(log *logrus.Logger) *cobra.Command {
	cfg := cliconfig.NewConfig()
	var schemaOut, codecOut string
	var lint bool

	cmd := &cobra.Command{
		Use:   "convert <schema.json|->",
		Short: "Compile a JSON Schema into a target provider's restricted structured-output schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := cfg.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"target": opts.Target,
				"mode":   opts.Mode,
			}).Debug("resolved conversion options")

			schema, err := readJSONFile(args[0])
			if err != nil {
				return err
			}

			log.Debug("running P0-P9 pipeline")
			result, err := jsonschemallm.Convert(schema, opts)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"transforms":             len(result.Codec.Transforms),
				"droppedConstraints":     len(result.Codec.DroppedConstraints),
				"providerCompatFindings": len(result.ProviderCompatErrors),
			}).Info("conversion complete")

			for _, ce := range result.ProviderCompatErrors {
				log.WithFields(logrus.Fields{
					"kind": ce.Kind,
					"path": ce.Path,
				}).Warn(ce.Hint)
			}

			if lint {
				if err := lintSchema(result.Schema); err != nil {
					log.WithError(err).Warn("emitted schema failed structural lint")
				} else {
					log.Debug("emitted schema passed structural lint")
				}
			}

			if err := writeJSONFile(schemaOut, result.Schema); err != nil {
				return err
			}
			return writeJSONFile(codecOut, result.Codec)
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&schemaOut, "schema-out", "-",
		"where to write the restricted schema (- for stdout)")
	cmd.Flags().StringVar(&codecOut, "codec-out", "codec.json",
		"where to write the codec sidecar")
	cmd.Flags().BoolVar(&lint, "lint", false,
		"parse the emitted schema through google/jsonschema-go as a structural sanity check")

	return cmd
}

// lintSchema is a structural sanity check only: it confirms the emitted
// schema round-trips through google/jsonschema-go's typed Schema, catching
// shapes that are valid Go JSON but not valid JSON Schema documents. It is
// not data validation, which spec Non-goals exclude.
func lintSchema(schema any) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	var typed jsonschema.Schema
	return json.Unmarshal(raw, &typed)
}
