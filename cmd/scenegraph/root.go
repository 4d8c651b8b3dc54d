package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/scenegraph/internal/config"
	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// app carries the settings shared by all subcommands. Flags are bound into
// a private viper instance so SCENEGRAPH_* environment variables override
// their defaults.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "scenegraph",
		Short: "Parse and index Godot text scenes",
		Long: `scenegraph parses .tscn and .tres files, resolves their external
resources through virtual path mappings and indexes scene trees and file
dependencies for queries, diagrams and impact analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("project-root", ".", "path to the project (res:// maps here by default)")
	pf.String("config", "", "config file (default: <project-root>/scenegraph.{yml,yaml,toml})")
	pf.BoolP("verbose", "v", false, "log resolution and indexing details to stderr")
	pf.StringArray("map", nil, "virtual path mapping prefix=dir, repeatable; takes precedence over configured mappings")

	_ = a.v.BindPFlag("project_root", pf.Lookup("project-root"))
	_ = a.v.BindPFlag("config", pf.Lookup("config"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	a.v.SetEnvPrefix("SCENEGRAPH")
	a.v.AutomaticEnv()

	root.AddCommand(
		a.parseCmd(),
		a.treeCmd(),
		a.diagramCmd(),
		a.indexCmd(),
		a.impactCmd(),
		a.statusCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// project is a resolved project root with its configuration.
type project struct {
	root    string
	cfg     *config.ProjectConfig
	verbose bool
}

// project loads the configuration selected by the global flags.
func (a *app) project(cmd *cobra.Command) (*project, error) {
	root, err := filepath.Abs(a.v.GetString("project_root"))
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	var cfg *config.ProjectConfig
	if path := a.v.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	maps, _ := cmd.Flags().GetStringArray("map")
	flagMappings, err := parseMappings(maps)
	if err != nil {
		return nil, err
	}
	if len(flagMappings) > 0 {
		cfg.Mappings = append(flagMappings, cfg.Mappings...)
	}

	p := &project{root: root, cfg: cfg, verbose: a.v.GetBool("verbose")}
	if p.verbose {
		log.Printf("project %s (%d mappings)", root, len(cfg.PathMap(root)))
	}
	return p, nil
}

// loader returns the project's scene loader, logging resolution when verbose.
func (p *project) loader() *tscn.Loader {
	var opts []tscn.Option
	if p.verbose {
		opts = append(opts, tscn.WithLogger(log.Default()))
	}
	return p.cfg.Loader(p.root, opts...)
}

// virtualPath accepts either a virtual path or a file system path inside one
// of the mapped directories.
func (p *project) virtualPath(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	vp, ok := p.cfg.VirtualPath(p.root, arg)
	if !ok {
		return "", fmt.Errorf("%s is outside every mapped directory", arg)
	}
	return vp, nil
}

// parseMappings parses prefix=dir flag values.
func parseMappings(values []string) ([]config.Mapping, error) {
	var out []config.Mapping
	for _, v := range values {
		prefix, dir, ok := strings.Cut(v, "=")
		if !ok || prefix == "" || dir == "" {
			return nil, fmt.Errorf("invalid --map %q: want prefix=dir", v)
		}
		out = append(out, config.Mapping{Prefix: prefix, Dir: dir})
	}
	return out, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
