// apicheck probes the configured backend: it fetches the first page of job
// posts and reports what came back. Handy when the client shows an empty jobs
// list and you want to know whether the backend or the filters are to blame.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/config"
)

func main() {
	godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	client := api.New(cfg.APIBaseURL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	jobs, meta, err := client.ListJobPosts(ctx, 1, 10, api.JobFilters{})
	if err != nil {
		log.Fatalf("backend check failed: %v", err)
	}

	fmt.Printf("backend %s OK in %dms\n", cfg.APIBaseURL, time.Since(start).Milliseconds())
	fmt.Printf("job posts: %d total, %d pages\n", meta.Total, meta.Pages)
	for _, j := range jobs {
		fmt.Printf("  #%d %s - %s (%s)\n", j.ID, j.Title, j.Company, j.JobType)
	}
}
