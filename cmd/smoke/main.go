// Command smoke drives a running counters API through one full
// create, increment, decrement and delete cycle.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/h0rv/counters/internal/api"
	"github.com/h0rv/counters/internal/config"
	"github.com/h0rv/counters/internal/domain"
	log "github.com/sirupsen/logrus"
)

func main() {
	baseURL := os.Getenv(config.EnvAPIURL)
	if baseURL == "" {
		baseURL = config.Default().API.URL
	}

	client, err := api.New(baseURL, api.WithTimeout(5*time.Second))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counters, err := client.GetCounters(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Counters (%d) at %s:\n", len(counters), client.BaseURL())
	for _, c := range counters {
		fmt.Printf("  %5d  %s (ID=%s)\n", c.Count, c.Title, c.ID)
	}

	title := fmt.Sprintf("smoke %d", time.Now().Unix())
	counters, err = client.CreateCounter(ctx, title)
	if err != nil {
		log.Fatal(err)
	}

	var created domain.Counter
	for _, c := range counters {
		if c.Title == title {
			created = c
		}
	}
	if created.ID == "" {
		log.Fatalf("created counter %q missing from response", title)
	}
	fmt.Printf("\nCreated %q (ID=%s)\n", created.Title, created.ID)

	for i := 0; i < 2; i++ {
		if counters, err = client.IncreaseCounter(ctx, created.ID); err != nil {
			log.Fatal(err)
		}
	}
	expect(counters, created.ID, 2)

	if counters, err = client.DecreaseCounter(ctx, created.ID); err != nil {
		log.Fatal(err)
	}
	expect(counters, created.ID, 1)

	if counters, err = client.DeleteCounter(ctx, created.ID); err != nil {
		log.Fatal(err)
	}
	if _, ok := domain.Find(counters, created.ID); ok {
		log.Fatalf("counter %s still listed after delete", created.ID)
	}

	fmt.Printf("Deleted %s, %d counters remain\n", created.ID, len(counters))
	fmt.Println("OK")
}

func expect(counters []domain.Counter, id string, count int) {
	c, ok := domain.Find(counters, id)
	if !ok {
		log.Fatalf("counter %s missing", id)
	}
	if c.Count != count {
		log.Fatalf("counter %s: want count %d, got %d", id, count, c.Count)
	}
	fmt.Printf("  %s at %d\n", id, c.Count)
}
