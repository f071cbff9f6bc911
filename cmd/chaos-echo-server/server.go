package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 5 * time.Second

// parseListenAddress splits a listen string of the form
// "host:port[ ssl]" into the address and an SSL flag.
func parseListenAddress(listen string) (addr string, ssl bool, ok bool) {
	if listen == "" {
		return "", false, false
	}
	if strings.HasSuffix(listen, " ssl") {
		return strings.TrimSuffix(listen, " ssl"), true, true
	}
	return listen, false, true
}

// runServer starts every configured listener (HTTP/HTTPS primary and
// secondary, raw TCP and UDP echo) and blocks until SIGINT/SIGTERM,
// then drains in-flight requests.
func runServer(store *MetricsStore, chaos *chaosInjector) error {
	configLock.RLock()
	cfg := config
	configLock.RUnlock()

	router := setupRoutes(store, chaos)
	// h2c supports HTTP/2 over cleartext for the HTTP listeners.
	handler := h2c.NewHandler(router, &http2.Server{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var servers []*http.Server
	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	for _, listen := range []string{cfg.Listen, cfg.ListenSecondary} {
		addr, ssl, ok := parseListenAddress(listen)
		if !ok {
			continue
		}
		server := &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // /delay and /ws hold responses open
			IdleTimeout:  120 * time.Second,
		}
		servers = append(servers, server)

		wg.Add(1)
		go func(server *http.Server, ssl bool) {
			defer wg.Done()
			var err error
			if ssl {
				if err = ensureCertificate(cfg.CertFile, cfg.KeyFile); err == nil {
					log.Printf("Starting HTTPS server on https://%s", server.Addr)
					err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
				}
			} else {
				log.Printf("Starting HTTP server on http://%s (with H2C support)", server.Addr)
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(server, ssl)
	}

	if len(servers) == 0 {
		return errors.New("no HTTP listener configured")
	}

	if cfg.ListenTCP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runTCPEcho(ctx, cfg.ListenTCP); err != nil {
				errCh <- err
			}
		}()
	}
	if cfg.ListenUDP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runUDPEcho(ctx, cfg.ListenUDP); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received, stopping all listeners")
	case err := <-errCh:
		stop()
		shutdownServers(servers)
		wg.Wait()
		return err
	}

	shutdownServers(servers)
	wg.Wait()
	return nil
}

func shutdownServers(servers []*http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server %s shutdown: %v", server.Addr, err)
		}
	}
}
