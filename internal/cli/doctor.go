package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools are installed",
		Args:  cobra.NoArgs,
		RunE:  doctor,
	}
}

func doctor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, tool := range a.svc.Tools() {
		if err := tool.Check(ctx); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", tool.Name(), err)
			continue
		}
		fmt.Fprintf(out, "ok    %s\n", tool.Name())
	}
	if cfg.CopywriterEnabled() {
		fmt.Fprintf(out, "ok    openrouter copy (%s)\n", cfg.OpenRouter.Model)
	}
	if failed > 0 {
		return fmt.Errorf("%d required tool(s) missing", failed)
	}
	return nil
}
