package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liveattendance/app"
)

func main() {
	wd, _ := os.Getwd()
	log.Println("cwd:", wd)

	srv, err := app.NewFromEnv()
	if err != nil {
		log.Fatal("startup: ", err)
	}
	defer srv.Close()

	hs := &http.Server{
		Addr:              srv.Config.Server.Addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s (store=%s)", hs.Addr, srv.Config.Store.Driver)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
