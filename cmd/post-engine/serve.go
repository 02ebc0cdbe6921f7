package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/post-engine/internal/drafts"
	"github.com/pdiddy/post-engine/internal/server"
)

var publishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Send a draft to the posting endpoint and mark it posted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s *drafts.Store) error {
			pub, err := newPublisher(cfg.Posting, s, logger)
			if err != nil {
				return err
			}
			if pub == nil {
				return errors.New("posting.endpoint is not configured")
			}
			d, err := pub.Publish(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published post %d\n", d.ID)
			return nil
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation and draft API over HTTP",
	Long: `Serve starts an HTTP API with routes to generate a post and store it as a
draft, edit drafts, publish them, list and delete stored posts. Prometheus
metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		pipeline, err := newPipeline(cfg.Generation, logger)
		if err != nil {
			return err
		}
		store, err := drafts.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		var pub server.Publisher
		p, err := newPublisher(cfg.Posting, store, logger)
		if err != nil {
			return err
		}
		if p != nil {
			pub = p
		} else {
			logger.Warn("posting.endpoint not set; publish route disabled")
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(pipeline, store, pub, logger, server.NewMetrics()).
			WithGenerationTimeout(cfg.Generation.Timeout)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("post-engine serving", zap.String("version", version), zap.String("store", string(cfg.Store.Driver)))
		return srv.Run(ctx, addr)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of post-engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("post-engine %s\n", version)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")

	rootCmd.AddCommand(publishCmd, serveCmd, versionCmd)
}
