package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coursechat/internal/logger"
	"coursechat/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat HTTP API",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := buildApp(ctx)
	defer a.Close()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		a.Config.Server.Addr = addr
	}

	sched := scheduler.New()
	conv := a.Config.Conversation
	ttl := time.Duration(conv.IdleTTLMins) * time.Minute
	if err := sched.AddEviction(conv.EvictSchedule, ttl, a.Store); err != nil {
		exitErr("scheduler", err, a)
	}
	sched.Start()
	defer sched.Stop()

	srv := a.Server()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting chat api", "provider", a.Config.LLM.Provider, "store", conv.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			sched.Stop()
			exitErr("server", err, a)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}
}
