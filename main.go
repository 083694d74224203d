package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/config"
	"github.com/bdcmjobs/jobdesk/internal/localstore"
	"github.com/bdcmjobs/jobdesk/internal/session"
	"github.com/bdcmjobs/jobdesk/internal/web"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	local, err := localstore.Open(cfg.StateDir)
	if err != nil {
		log.Fatalf("open state dir: %v", err)
	}

	sessions := session.NewStore(local, nil)
	gateway := api.New(cfg.APIBaseURL, sessions)
	gateway.SetAuthFailureHook(sessions.Logout)
	sessions.SetGateway(gateway)

	sessions.Restore(context.Background())
	if sess, active := sessions.Current(); active {
		log.Printf("[jobdesk] restored session for %s (%s)", sess.User.Email, sess.User.Role)
	}

	server := web.NewServer(gateway, sessions, local)

	fmt.Printf("jobdesk listening on http://%s (backend %s)\n", cfg.Listen, cfg.APIBaseURL)
	if err := http.ListenAndServe(cfg.Listen, server.Routes()); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
