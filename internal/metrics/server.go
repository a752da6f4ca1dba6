package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/phonetonote/paperweight/internal/logger"
)

// shutdownTimeout bounds how long Serve waits for in-flight scrapes.
const shutdownTimeout = 5 * time.Second

// Serve exposes the observer on addr at /metrics until ctx is cancelled.
// It returns once the listener is bound; serving continues in the background.
func Serve(ctx context.Context, addr string, o *Observer) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics on http://%s/metrics", ln.Addr())
	return ln.Addr(), nil
}
