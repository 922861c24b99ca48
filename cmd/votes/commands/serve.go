package commands

import (
	"context"
	"log/slog"
	"time"

	"rollcall-backend/internal/api"
	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/roster"
	"rollcall-backend/internal/snapshot"
	"rollcall-backend/pkg/configutil"
	"rollcall-backend/pkg/serviceutil"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddress *string

func init() {
	serveAddress = serveCmd.Flags().String("address", "", "The address to listen on, overrides server.address.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--address <host:port>]",
	Short: "Serves the stored votes over a read only JSON API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		server, err := configutil.Override(cfg.Server, ServerConfig{Address: *serveAddress})
		if err != nil {
			return err
		}
		if !*verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		s, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer s.Close()

		cache := snapshot.NewCache(s, chrono.NewStandardTime(), tel)
		err = cache.Load(ctx)
		if err != nil {
			return err
		}

		routerCfg := api.RouterConfig{
			Cache:           cache,
			PageSize:        server.PageSize,
			DefaultMemberID: server.DefaultMemberID,
			Tel:             tel,
		}
		if cfg.Roster.Url != "" {
			badgerDb, err := roster.OpenCache(cfg.Roster.CacheDir, tel)
			if err != nil {
				return err
			}
			defer badgerDb.Close()
			routerCfg.Roster = roster.NewSource(cfg.Roster.Options(), badgerDb, tel)
		}

		g, gctx := errgroup.WithContext(ctx)

		if server.IngestSchedule != "" {
			pipeline, err := newPipeline(s, cfg.Source)
			if err != nil {
				return err
			}
			scheduler := chrono.NewCronScheduler(tel)
			g.Go(func() error {
				<-gctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				scheduler.Stop(stopCtx)
				return nil
			})

			err = scheduler.Schedule("ingest", server.IngestSchedule, func() {
				scheduledIngest(gctx, pipeline, cache.Reload)
			})
			if err != nil {
				return err
			}
			slog.Info("scheduled ingestion", "spec", server.IngestSchedule)
		}

		telemetry.InstrumentPerfStats(gctx, 30*time.Second)

		g.Go(func() error {
			return serviceutil.ServeHttp(gctx, server.Address, api.NewRouter(routerCfg))
		})
		err = g.Wait()
		slog.Info("server stopped")
		return err
	},
}
