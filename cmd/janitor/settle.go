package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"github.com/zera-labs/janitor/config"
	"github.com/zera-labs/janitor/history"
	"github.com/zera-labs/janitor/report"
	"github.com/zera-labs/janitor/settlement"
	"go.uber.org/zap"
)

// runSettlement settles the session selection and prints the result. The run
// stops before the next transaction on SIGINT or SIGTERM. If persist is set,
// outcomes are stored into the configured history and report directory.
func runSettlement(c *cli.Context, cfg *config.Config, log *zap.Logger, exec *settlement.Executor, sess *settlement.Session, persist bool) (settlement.Report, error) {
	est, err := sess.Estimate()
	if err != nil {
		return settlement.Report{}, err
	}
	printEstimate(c.App.Writer, est)

	if cfg.Metrics.Address != "" {
		stop := serveMetrics(log, cfg.Metrics.Address)
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep, err := exec.Run(ctx, sess)
	if err != nil {
		return rep, err
	}

	printReport(c.App.Writer, rep)

	if persist {
		if err := save(cfg, rep); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

func save(cfg *config.Config, rep settlement.Report) error {
	if cfg.History.Path != "" {
		s, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}

		err = s.Append(rep.RunID, rep.Outcomes)
		_ = s.Close()
		if err != nil {
			return fmt.Errorf("store outcomes: %w", err)
		}
	}

	if cfg.Report.Dir != "" {
		err := os.MkdirAll(cfg.Report.Dir, 0700)
		if err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}

		err = report.Write(cfg.Report.Dir, rep)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// serveMetrics exposes Prometheus metrics at addr until the returned function
// is called.
func serveMetrics(log *zap.Logger, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.String("address", addr), zap.Error(err))
		}
	}()

	log.Info("serving metrics", zap.String("address", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
