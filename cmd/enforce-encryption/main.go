// Command enforce-encryption sets one extract-encryption mode on every site
// of a server.
//
// Usage:
//
//	enforce-encryption [server] [username] [targetMode]
//
// Positional arguments override the EAR_* environment (a .env file is
// honored); anything still missing is prompted for. The password is never
// taken as an argument. The signed-in user must be a server administrator,
// which the server enforces on its side.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JakobMund/ear-server-tools/internal/config"
	"github.com/JakobMund/ear-server-tools/internal/service/enforcer"
	"github.com/JakobMund/ear-server-tools/internal/service/rest"
	"github.com/JakobMund/ear-server-tools/pkg/utils"
)

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	args := os.Args[1:]
	if len(args) > 3 {
		log.Fatalf("usage: %s [server] [username] [targetMode]", filepath.Base(os.Args[0]))
	}
	if len(args) > 0 {
		cfg.Server.URL = args[0]
	}
	if len(args) > 1 {
		cfg.Auth.Username = args[1]
	}
	if len(args) > 2 {
		cfg.Enforce.TargetMode = args[2]
	}

	if cfg.Server.URL == "" {
		cfg.Server.URL = mustPrompt("Server (include http:// or https://)")
	}
	if cfg.Auth.Username == "" {
		cfg.Auth.Username = mustPrompt("User name")
	}
	if cfg.Auth.Password == "" {
		password, err := utils.PromptPassword("Password")
		if err != nil {
			log.Fatalf("failed to read password: %v", err)
		}
		cfg.Auth.Password = password
	}
	if cfg.Auth.Site == "" {
		cfg.Auth.Site = mustPrompt("Site name (hit Return for the default site)")
	}
	if cfg.Enforce.TargetMode == "" {
		cfg.Enforce.TargetMode = mustPrompt("Encryption mode to be set for all sites")
	}

	if cfg.Server.URL == "" {
		log.Fatal("a server address is required")
	}
	if cfg.Enforce.TargetMode == "" {
		log.Fatal("a target encryption mode is required")
	}

	// "Default" names the default site, which the API selects with an
	// empty content URL.
	if cfg.Auth.Site == "Default" {
		cfg.Auth.Site = ""
	}

	client := rest.NewClient(cfg.Server.URL, cfg.Server.APIVersion, cfg.Server.Timeout)
	client.SetStrict(cfg.Server.Strict)

	run := enforcer.New(client, cfg.Server.URL, os.Stdout)
	creds := enforcer.Credentials{
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
		Site:     cfg.Auth.Site,
	}
	if err := run.Run(ctx, creds, cfg.Enforce.TargetMode); err != nil {
		log.Fatalf("enforcement run failed: %v", err)
	}
}

func mustPrompt(label string) string {
	value, err := utils.PromptLine(label)
	if err != nil {
		log.Fatalf("failed to read %s: %v", label, err)
	}
	return value
}
