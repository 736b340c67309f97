package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/lojhan/symtable/internal/command"
	"github.com/lojhan/symtable/internal/config"
	"github.com/lojhan/symtable/internal/logging"
	"github.com/lojhan/symtable/internal/metrics"
	"github.com/lojhan/symtable/internal/resp"
	"github.com/lojhan/symtable/internal/server"
	"github.com/lojhan/symtable/internal/symtable"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newTable(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) symtable.SymTable[string] {
	if cfg.Impl == config.ImplList {
		return symtable.NewList[string]()
	}

	hasher := symtable.MultiplicativeHasher
	if cfg.Hasher == config.HasherXX {
		hasher = symtable.XXHasher
	}

	tbl := symtable.New[string](
		symtable.WithLogger(logger.Named("table")),
		symtable.WithHasher(hasher),
		symtable.WithGrowHook(m.ObserveGrow),
	)
	m.SetBuckets(tbl.Stats().Buckets)
	return tbl
}

func run(cfg *config.Config, logger *zap.Logger) (err error) {
	m := metrics.New()
	tbl := newTable(cfg, logger, m)

	srv := server.NewServer(
		server.WithLogger(logger.Named("server")),
		server.WithMulticore(cfg.Multicore),
		server.WithCommandHook(func(name string, _ resp.Value) {
			m.IncCommand(name)
			m.SetBindings(tbl.Len())
			if name == "FREE" {
				if st, ok := tbl.(*symtable.Table[string]); ok {
					m.SetBuckets(st.Stats().Buckets)
				}
			}
		}),
		server.WithErrorHook(m.IncError),
	)
	command.Register(srv.RegisterCommand, tbl, cfg.Impl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("starting symbol table server",
			zap.String("addr", cfg.Addr),
			zap.String("impl", cfg.Impl),
			zap.String("hasher", cfg.Hasher),
		)
		return srv.Start(cfg.Addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs error
		if srv.Running() {
			errs = multierr.Append(errs, srv.Stop(shutdownCtx))
		}
		if metricsSrv != nil {
			errs = multierr.Append(errs, metricsSrv.Shutdown(shutdownCtx))
		}
		return errs
	})

	err = g.Wait()
	tbl.Free()
	return multierr.Append(err, ignoreSyncError(logger.Sync()))
}

// ignoreSyncError drops the error fsync reports for terminals and pipes.
func ignoreSyncError(err error) error {
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTTY) {
		return nil
	}
	return err
}
