package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outbound-dialer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func printConfig(w io.Writer, c *config.Config) error {
	out, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}
	_, err = w.Write(out)
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
}
