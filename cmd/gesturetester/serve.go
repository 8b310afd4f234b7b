// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gioui.org/touch/config"
	"gioui.org/touch/internal/di"
	"gioui.org/touch/internal/trace"
	"gioui.org/touch/platform/wsinput"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gesture engine to websocket clients",
	Long: `Serve accepts websocket connections on /ws. Each connection names its
element with the element query parameter and receives the gestures
recognized from the touch events it sends. The configuration file is
reloaded when it changes.`,
	Args: cobra.NoArgs,
	RunE: executeServe,
}

var (
	serveAddr   string
	serveRecord string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().StringVar(&serveRecord, "record", "", "Write received samples to this trace file on exit")
}

func executeServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := container(log, di.Invoke(wireServe))
	if err != nil {
		return err
	}
	loader, err := di.Get[*config.Loader](c)
	if err != nil {
		return err
	}
	defer loader.Close()
	srv, err := di.Get[*wsinput.Server](c)
	if err != nil {
		return err
	}
	rec, err := di.Get[*trace.Recorder](c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, log, srv, rec)
}

// wireServe connects the recorder and the configuration reload to the
// server.
func wireServe(log *zap.SugaredLogger, l *config.Loader, srv *wsinput.Server, rec *trace.Recorder) error {
	if serveRecord != "" {
		srv.OnSample(rec.Record)
	}
	if configPath == "" {
		return nil
	}
	l.OnChange(srv.Reconfigure)
	if err := l.Watch(); err != nil {
		return err
	}
	go watchErrors(log, l)
	return nil
}

func watchErrors(log *zap.SugaredLogger, l *config.Loader) {
	for err := range l.Errors() {
		log.Warnw("configuration not reloaded", "error", err)
	}
}

func serve(ctx context.Context, log *zap.SugaredLogger, srv *wsinput.Server, rec *trace.Recorder) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	hs := &http.Server{Addr: serveAddr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", serveAddr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	srv.Close()
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warnw("shutdown", "error", err)
	}
	if serveRecord != "" {
		if err := rec.Save(serveRecord); err != nil {
			return err
		}
		log.Infow("trace saved", "path", serveRecord, "steps", rec.Len())
	}
	return nil
}
