package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/viralcut/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Generate clips for one video and print the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, args[0])
		},
	}
	cmd.Flags().String("out", "", "Output root directory (default from config)")
	cmd.Flags().Float64("clip-length", 0, "Clip length in seconds (default from config)")
	cmd.Flags().Int("max-clips", 0, "Maximum number of clips (default from config)")
	cmd.Flags().Float64("step", 0, "Scan step in seconds (default from config)")
	return cmd
}

func runOnce(cmd *cobra.Command, url string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Paths.Output = out
	}

	req := pipeline.Request{URL: url}
	if cmd.Flags().Changed("clip-length") {
		req.ClipLength, _ = cmd.Flags().GetFloat64("clip-length")
		if req.ClipLength == 0 {
			return fmt.Errorf("--clip-length must be greater than zero")
		}
	}
	if cmd.Flags().Changed("max-clips") {
		req.MaxClips, _ = cmd.Flags().GetInt("max-clips")
		if req.MaxClips == 0 {
			return fmt.Errorf("--max-clips must be greater than zero")
		}
	}
	if cmd.Flags().Changed("step") {
		req.Step, _ = cmd.Flags().GetFloat64("step")
		if req.Step == 0 {
			return fmt.Errorf("--step must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Run(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
