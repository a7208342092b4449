package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odit-bit/ddsclog/internal/monolith"
)

type Root struct {
	modules []monolith.Module
	mux     chi.Router
	addr    string
}

func (s *Root) Mux() chi.Router {
	return s.mux
}

// Run starts the modules and serves HTTP until ctx is done.
func (s *Root) Run(ctx context.Context) error {
	for _, mod := range s.modules {
		if err := mod.Start(ctx, s); err != nil {
			return err
		}
	}

	srv := http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
