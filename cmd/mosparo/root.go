package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vitalvas/mosparo/client"
	"github.com/vitalvas/mosparo/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type globalFlags struct {
	configPath string
	output     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "mosparo",
		Short: "mosparo API client",
		Long: `Verify form submissions against a mosparo project and read its statistics.

Connection settings are read from the file given with --config and from the
MOSPARO_HOST, MOSPARO_PUBLIC_KEY, MOSPARO_PRIVATE_KEY and MOSPARO_VERIFY_SSL
environment variables, which take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch flags.output {
			case outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", flags.output)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", outputJSON, "output format: json|yaml")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log API calls to stderr")

	cmd.AddCommand(newVerifyCmd(flags))
	cmd.AddCommand(newStatsCmd(flags))

	return cmd
}

// newClient builds an API client from the config file and environment.
func newClient(cmd *cobra.Command, flags *globalFlags) (*client.Client, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if flags.verbose {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{"stderr"}

		logger, err = zcfg.Build()
		if err != nil {
			return nil, nil, err
		}
	}

	ccfg := cfg.ClientConfig()
	ccfg.Logger = logger

	c, err := client.New(ccfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("client configured",
		zap.String("command", cmd.Name()),
		zap.String("host", cfg.Host),
		zap.Bool("verify_ssl", cfg.VerifySSL),
	)

	return c, func() { _ = logger.Sync() }, nil
}

func printResult(w io.Writer, format string, v any) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
