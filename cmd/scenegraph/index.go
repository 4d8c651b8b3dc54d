package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scenegraph/internal/graph"
)

func (a *app) indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index every scene and resource of a project",
		Long: `Discover the project's .tscn and .tres files through the configured
mappings, parse them with their external resources and record node trees,
file dependencies and clusters. With a kuzu or sqlite store the index is
rebuilt from scratch at the store path; with the memory store only the
summary is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runIndex,
	}
	cmd.Flags().String("store", "", "store backend: memory, kuzu or sqlite (default: configured or memory)")
	cmd.Flags().String("store-path", "", "index location (default: .scenegraph/index.kuzu or index.db)")
	cmd.Flags().Int("workers", 0, "files parsed in parallel (default: configured or GOMAXPROCS)")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func (a *app) runIndex(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		a.v.Set("project_root", args[0])
	}
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	if s, _ := cmd.Flags().GetString("store"); s != "" {
		p.cfg.Store = s
	}
	if s, _ := cmd.Flags().GetString("store-path"); s != "" {
		p.cfg.StorePath = s
	}
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		p.cfg.Workers = n
	}
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := p.createIndex(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := p.buildIndex(ctx, store)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = w.Write(append(out, '\n'))
		return err
	}

	printIndexResult(cmd, result)
	if p.persisted() {
		writeLine(w, "stored in %s", p.storePath())
	}
	return nil
}

func printIndexResult(cmd *cobra.Command, result *graph.IndexResult) {
	w := cmd.OutOrStdout()
	writeLine(w, "indexed %d files, %d failed", len(result.Indexed), len(result.Failed))
	for _, f := range result.Failed {
		writeLine(w, "  failed %s: %s", f.Path, f.Error)
	}
	st := result.Stats
	writeLine(w, "files: %d  nodes: %d  edges: %d  clusters: %d", st.FileCount, st.NodeCount, st.EdgeCount, st.ClusterCount)
	for _, c := range result.Clusters {
		writeLine(w, "  %s (%d files, cohesion %.2f)", c.Name, len(c.Members), c.CohesionScore)
	}
}
