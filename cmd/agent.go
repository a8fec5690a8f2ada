package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outbound-dialer/internal/config"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Print the configured voice agent's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printAgent(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func printAgent(ctx context.Context, w io.Writer, c *config.Config) error {
	if c.ElevenLabs.Key == "" || c.ElevenLabs.AgentID == "" {
		return eris.New("agent: elevenlabs.key and elevenlabs.agent_id are required (DIALER_ELEVENLABS_KEY, DIALER_ELEVENLABS_AGENT_ID)")
	}

	agent, err := newVoiceClient(c).GetAgent(ctx, c.ElevenLabs.AgentID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(agent.Raw)
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
