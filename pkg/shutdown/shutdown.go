package shutdown

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
)

// SetupSignalHandler returns a context that is canceled on SIGINT or
// SIGTERM. A SIGPIPE also cancels, after dumping goroutine stacks to aid
// diagnostics.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Log.Info("signal_received",
			zap.String("signal", s.String()),
			zap.String("msg", "shutdown requested"))
		cancel()
	}()

	sigpipe := make(chan os.Signal, 1)
	signal.Notify(sigpipe, syscall.SIGPIPE)
	go func() {
		s := <-sigpipe
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		logger.Log.Info("signal_received",
			zap.String("signal", s.String()),
			zap.String("msg", "SIGPIPE - dumping goroutine stacks"))
		logger.Log.Info("goroutine_stack_dump", zap.String("dump", string(buf[:n])))
		cancel()
	}()

	return ctx, cancel
}
