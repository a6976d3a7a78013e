package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/scheduler"
)

func NewServeCommand() *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Start the HTTP API and, unless disabled, the cron trigger of the daily reminder run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(withScheduler)
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "scheduler", true, "run the reminder job on REMINDER_CRON")
	return cmd
}

func runServer(withScheduler bool) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	a := newApp(cfg, log, db, openRedis(cfg, log))
	defer a.Close()

	router, err := a.router()
	if err != nil {
		return err
	}

	var sched *scheduler.ReminderScheduler
	if withScheduler {
		sched, err = scheduler.NewReminderScheduler(cfg.ReminderCron, cfg.Location(), cfg.ReminderTimeout, a.reminders, log)
		if err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("recurrence engine listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("stop signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
