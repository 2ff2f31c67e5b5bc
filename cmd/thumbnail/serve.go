package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gogpu/thumbnail/internal/server"
	"github.com/gogpu/thumbnail/segment"
)

func runServe(ctx context.Context, args []string, _, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	addr := fs.String("addr", ":8080", "listen address")
	fontsDir := fs.String("fonts", "", "directory of extra .ttf/.otf fonts")
	segmentCmd := fs.String("segment-cmd", "", "command producing the subject when no foreground is uploaded")
	segTimeout := fs.Duration("segment-timeout", 2*time.Minute, "segmentation time limit")
	maxUpload := fs.Int64("max-upload", server.DefaultMaxUpload, "maximum request body in bytes")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := parse(fs, args); err != nil {
		return err
	}
	log := setupLogging(stderr, *verbose)

	reg, err := loadFonts(*fontsDir, log)
	if err != nil {
		return err
	}
	var seg segment.Segmenter
	if *segmentCmd != "" {
		cmd, err := segment.ParseCommand(*segmentCmd)
		if err != nil {
			return usageError{err}
		}
		seg = cmd
	}

	srv := server.New(reg, seg,
		server.WithLogger(log),
		server.WithMaxUpload(*maxUpload),
		server.WithSegmentTimeout(*segTimeout),
	)
	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
