package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/config"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/web"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/web/api"
)

func main() {
	if err := config.Load(config.Frontend...); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := web.New(api.New(config.APIURL()), config.AuthKey(), config.CalculatorDebounce())
	srv := &http.Server{
		Addr:              config.WebAddr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Str("api", config.APIURL()).Msg("web listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exit")
	}
}
