package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

func (a *app) treeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print a scene's node tree",
		Long: `Print the node tree of a scene, one node per line, indented by level,
with node id, path hash and type. Instanced scenes are expanded below their
instancing node when --expand is set.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runTree,
	}
	cmd.Flags().Bool("properties", false, "print each node's properties")
	cmd.Flags().Bool("expand", false, "expand resolved instanced scenes")
	return cmd
}

func (a *app) runTree(cmd *cobra.Command, args []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}
	vp, err := p.virtualPath(args[0])
	if err != nil {
		return err
	}
	scene, err := p.loader().Load(cmd.Context(), vp)
	if err != nil {
		return err
	}

	props, _ := cmd.Flags().GetBool("properties")
	expand, _ := cmd.Flags().GetBool("expand")
	printTree(cmd.OutOrStdout(), scene, "", props, expand)
	return nil
}

// printTree writes scene's nodes depth-first; indent prefixes every line.
func printTree(w io.Writer, scene *tscn.Scene, indent string, props, expand bool) {
	scene.Walk(func(n *tscn.Node) bool {
		pad := indent + strings.Repeat("  ", n.Level)
		line := fmt.Sprintf("%s%s [id=%d uuid=0x%04x", pad, n.Name, n.ID, n.UUID)
		if n.Type != "" {
			line += " type=" + n.Type
		}
		res, instanced := scene.ExtResource(n.Instance)
		if instanced {
			line += " instance=" + res.Path
		}
		if len(n.Groups) > 0 {
			line += " groups=" + strings.Join(n.Groups, ",")
		}
		writeLine(w, "%s]", line)

		if props {
			for _, key := range n.Properties.Keys() {
				v, _ := n.Properties.Get(key)
				writeLine(w, "%s    %s = %s", pad, key, valueText(v))
			}
		}
		if expand && instanced && res.Resolved() {
			printTree(w, res.Scene, pad+"  | ", props, expand)
		}
		return true
	})
}

// valueText returns a value's literal, or its JSON form for maps assembled
// from several lines.
func valueText(v tscn.Value) string {
	if v.Kind != tscn.KindMap && v.Kind != tscn.KindMapArray {
		return v.Raw
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v.Raw
	}
	return string(data)
}
