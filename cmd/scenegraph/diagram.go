package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scenegraph/internal/export"
)

func (a *app) diagramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagram [file]",
		Short: "Print a Mermaid diagram",
		Long: `With a file, print its node tree as a Mermaid diagram. Without one,
print the project's file dependency diagram grouped by cluster, read from the
persisted index or built in memory when no persistent store is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runDiagram,
	}
}

func (a *app) runDiagram(cmd *cobra.Command, args []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		vp, err := p.virtualPath(args[0])
		if err != nil {
			return err
		}
		scene, err := p.loader().Load(ctx, vp)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), export.SceneTreeMermaid(scene))
		return nil
	}

	store, err := p.openIndex(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	mermaid, err := export.GenerateMermaid(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), mermaid)
	return nil
}
