package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/scenegraph/internal/graph"
	"github.com/dusk-indust/scenegraph/internal/mcptools"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server",
		Long: `Serve the scene tools over the Model Context Protocol, on stdio by
default or as streamable HTTP with --http. An existing persisted index is
served until build_index replaces it.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().String("http", "", "listen address for streamable HTTP, e.g. :8080")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	p, err := a.project(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store graph.Store
	if p.persisted() {
		if _, statErr := os.Stat(p.storePath()); statErr == nil {
			if store, err = p.open(ctx, p.storePath()); err != nil {
				return err
			}
		}
	}
	svc := mcptools.NewSceneService(store, p.root, p.cfg)
	defer svc.Close()

	addr, _ := cmd.Flags().GetString("http")
	if addr == "" {
		// Run reports the cancellation that stopped it; that is a clean exit.
		if err := mcptools.RunMCPServerStdio(ctx, svc); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	log.Printf("serve-mcp: listening on %s", addr)
	return mcptools.RunMCPServer(ctx, svc, addr)
}

