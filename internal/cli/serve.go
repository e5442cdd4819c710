package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fekuna/omnipos-crm-service/internal/gql"
	"github.com/fekuna/omnipos-crm-service/internal/server"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GraphQL over HTTP and the admin gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, migrate bool) error {
	cfg, log := opts.Config, opts.Logger
	d := newDeps(opts)
	defer d.Close()

	if migrate {
		db, err := d.DB(ctx)
		if err != nil {
			return err
		}
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	uc, err := d.UseCases(ctx)
	if err != nil {
		return err
	}
	schema, err := gql.NewSchema(gql.NewResolver(
		uc.customers, uc.products, uc.orders, uc.inventory,
		gql.RestockDefaults{Threshold: cfg.Restock.Threshold, Increment: cfg.Restock.Increment},
		log,
	))
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           server.NewRouter(schema, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return err
	}
	grpcSrv, health := server.NewGRPCServer()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.RunHTTP(ctx, httpSrv, log) })
	g.Go(func() error { return server.RunGRPC(ctx, grpcSrv, health, lis, log) })

	err = g.Wait()
	log.Info("Server stopped", zap.Error(err))
	return err
}

func listenAddr(port string) string {
	if port == "" || port[0] == ':' {
		return port
	}
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return ":" + port
}
