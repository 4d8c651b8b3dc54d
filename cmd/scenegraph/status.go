package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scenegraph/internal/graph"
	"github.com/dusk-indust/scenegraph/internal/status"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the persisted index matches the project files",
		Args:  cobra.NoArgs,
		RunE:  a.runStatus,
	}
}

func (a *app) runStatus(cmd *cobra.Command, _ []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if !p.persisted() {
		writeLine(w, "No persistent index configured (store: memory).")
		writeLine(w, "Commands index the project on demand.")
		return nil
	}
	path := p.storePath()
	if _, err := os.Stat(path); err != nil {
		writeLine(w, "No index found at %s.", path)
		writeLine(w, "Run 'scenegraph index' to create it.")
		return nil
	}

	ctx := cmd.Context()
	store, err := p.open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	discovered, err := graph.DiscoverMapped(p.cfg.PathMap(p.root), p.cfg.Extensions, p.cfg.Excluded)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	st, err := status.GetIndexStatus(ctx, store, discovered)
	if err != nil {
		return err
	}

	writeLine(w, "Index: %s (%s)", path, p.cfg.Store)
	writeLine(w, "  %-10s %d", "scenes", st.Scenes)
	writeLine(w, "  %-10s %d", "resources", st.Resources)
	writeLine(w, "  %-10s %d", "external", st.External)
	writeLine(w, "  %-10s %d", "nodes", st.Nodes)
	writeLine(w, "  %-10s %d", "clusters", st.Clusters)
	if st.UpToDate() {
		writeLine(w, "up to date")
		return nil
	}
	for _, f := range st.Unindexed {
		writeLine(w, "  + %s", f)
	}
	for _, f := range st.Removed {
		writeLine(w, "  - %s", f)
	}
	writeLine(w, "stale: %d unindexed, %d removed; run 'scenegraph index'", len(st.Unindexed), len(st.Removed))
	return nil
}
