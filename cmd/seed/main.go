// seed registers the sample identities in the postgres database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/admin-console/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/admin-console/internal/seed"
	"github.com/lmittmann/tint"
)

func main() {
	ctx := context.Background()
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	if err := postgres.Migrate(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	created, err := seed.Run(ctx, postgres.NewIdentityRepository(pool), seed.Samples, logger)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Identities created: %d  (skipped %d already existing)\n", created, len(seed.Samples)-created)
	fmt.Println()
	for _, s := range seed.Samples {
		fmt.Printf("    %-34s %s\n", s.Identifier, s.Secret)
	}
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: sign in and keep the session cookie:")
	fmt.Println()
	fmt.Printf("    curl -s -c jar.txt -X POST http://localhost:8080/authentication/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"identifier\":\"%s\",\"secret\":\"%s\"}'\n", seed.Samples[0].Identifier, seed.Samples[0].Secret)
	fmt.Println()
	fmt.Println("  Step 2: open the protected area with it:")
	fmt.Println()
	fmt.Println("    curl -s -b jar.txt http://localhost:8080/dashboard/session")
	fmt.Println()
	fmt.Println("  Without the cookie the second call answers 307 with Location: /")
	fmt.Println("  (locally, run the server with COOKIE_SECURE=false so curl sends it back over http).")
}
