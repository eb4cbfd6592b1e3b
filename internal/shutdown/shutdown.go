package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// WithGracefulShutdown returns a context that is cancelled on SIGTERM/SIGINT, so a running
// compiler process is killed instead of outliving the CLI.
func WithGracefulShutdown(parent context.Context, l *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signalChan := CreateGracefulShutdownChannel()

	go func() {
		defer signal.Stop(signalChan)
		select {
		case sig := <-signalChan:
			l.Sugar().Infow("Caught signal, cancelling", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
