// Command mockserver runs an in-memory fake of the tenant server's REST
// API, for trying the enforcement CLI without a real server:
//
//	mockserver -addr :8080
//	enforce-encryption http://localhost:8080 admin enforced
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/JakobMund/ear-server-tools/internal/mockapi"
	"github.com/JakobMund/ear-server-tools/internal/model/site"
)

func main() {
	log.SetFlags(log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	addr := flag.String("addr", ":8080", "listen address")
	username := flag.String("username", envOrDefault("EAR_USERNAME", "admin"), "accepted admin user name")
	password := flag.String("password", envOrDefault("EAR_PASSWORD", "admin"), "accepted admin password")
	flag.Parse()

	store := seedStore(*username, *password)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockapi.NewRouter(store),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mock tenant server listening on %s (user %s)", *addr, *username)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// seedStore fills the fake server with a default site plus a few tenant
// sites in assorted encryption states, and one group with members.
func seedStore(username, password string) *mockapi.Store {
	defaultSite := site.Site{
		ID:             uuid.NewString(),
		ContentURL:     "",
		Name:           "Default",
		EncryptionMode: site.ModeDisabled,
	}
	sites := []site.Site{
		defaultSite,
		{ID: uuid.NewString(), ContentURL: "engineering", Name: "Engineering", EncryptionMode: site.ModeEnabled},
		{ID: uuid.NewString(), ContentURL: "finance", Name: "Finance", EncryptionMode: site.ModeEnforced},
		{ID: uuid.NewString(), ContentURL: "ops", Name: "Operations", EncryptionMode: site.ModeDisabled},
	}

	store := mockapi.NewStore(username, password, sites)
	store.AddGroup(defaultSite.ID,
		site.Group{ID: uuid.NewString(), Name: "All Users"},
		[]site.User{
			{ID: uuid.NewString(), Name: username, SiteRole: "ServerAdministrator"},
			{ID: uuid.NewString(), Name: "viewer", SiteRole: "Viewer"},
		})
	return store
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
