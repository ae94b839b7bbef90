// Command jsonschema-llm compiles a JSON Schema into a restricted schema
// satisfying a target LLM provider's structured-output grammar, and
// reverses that transform against the provider's output using the codec
// sidecar Convert emitted.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "jsonschema-llm",
		Short:         "Compile JSON Schema into LLM structured-output schemas, and reverse the transform",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug-level logging to stderr")

	rootCmd.AddCommand(newConvertCmd(log))
	rootCmd.AddCommand(newRehydrateCmd(log))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
