package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) impactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impact <file>...",
		Short: "List the scenes affected by changing files",
		Long: `Compute which indexed files reference the given files, directly or
through other scenes and resources, and a risk score: the share of indexed
files affected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runImpact,
	}
	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func (a *app) runImpact(cmd *cobra.Command, args []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	changed := make([]string, len(args))
	for i, arg := range args {
		if changed[i], err = p.virtualPath(arg); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	store, err := p.openIndex(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	impact, err := store.AssessImpact(ctx, changed)
	if err != nil {
		return fmt.Errorf("assess impact: %w", err)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(impact, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = w.Write(append(out, '\n'))
		return err
	}

	writeLine(w, "directly affected (%d):", len(impact.DirectlyAffected))
	for _, f := range impact.DirectlyAffected {
		writeLine(w, "  %s", f)
	}
	writeLine(w, "transitively affected (%d):", len(impact.TransitivelyAffected))
	for _, f := range impact.TransitivelyAffected {
		writeLine(w, "  %s", f)
	}
	writeLine(w, "risk: %.2f", impact.RiskScore)
	return nil
}
