package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/scenegraph/internal/export"
)

func (a *app) parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse scenes and print them as JSON",
		Long: `Parse one or more scene or resource files, given as virtual paths
(res://Main.tscn) or as paths inside a mapped directory, and print the parsed
documents as JSON. Several files are parsed in parallel and printed as an
array in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runParse,
	}
	cmd.Flags().Bool("compact", false, "print JSON without indentation")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	compact, _ := cmd.Flags().GetBool("compact")

	paths := make([]string, len(args))
	for i, arg := range args {
		if paths[i], err = p.virtualPath(arg); err != nil {
			return err
		}
	}

	loader := p.loader()
	docs := make([]*export.SceneExport, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, vp := range paths {
		g.Go(func() error {
			scene, err := loader.Load(ctx, vp)
			if err != nil {
				return err
			}
			docs[i] = export.ExportScene(vp, scene)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var v any = docs
	if len(docs) == 1 {
		v = docs[0]
	}
	var out []byte
	if compact {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(append(out, '\n'))
	return err
}
