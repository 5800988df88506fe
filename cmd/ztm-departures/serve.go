package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/server"
	"github.com/theoremus-urban-solutions/ztm-departures/ztm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refreshes all boards daily and serves them over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var (
	port      int
	codespace string
)

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&codespace, "codespace", "ZTM", "Codespace used in SIRI references")
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Config
	if port > 0 {
		cfg.Server.Port = port
	}

	reg, err := board.FromConfig(cfg, ztm.NewClientFromConfig(cfg.API))
	if err != nil {
		return err
	}
	log.Printf("Serving %d boards", reg.Len())

	refresher := board.NewRefresher(reg, cfg.Refresh, cfg.Location())
	go func() { _ = refresher.Run(ctx) }()

	return server.New(reg, server.Options{Port: cfg.Server.Port, Codespace: codespace}).Run(ctx)
}
