package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/killthevirus/killthevirus/go/internal/dbconfig"
)

// Entry mirrors the JSON seed file shape.
type Entry struct {
	Name    string  `json:"name"`
	Seconds float64 `json:"seconds"`
	Table   string  `json:"table"` // "single" or "average"
}

var tables = map[string]string{
	"single":  "best_reaction_times",
	"average": "best_average_reaction_times",
}

func main() {
	path := "sql/seed_leaderboard.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var inserted, errs int
	for _, e := range entries {
		table, ok := tables[e.Table]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown ledger %q for %s\n", e.Table, e.Name)
			errs++
			continue
		}
		if _, err := pool.Exec(context.Background(), fmt.Sprintf(`
            INSERT INTO %s (id, name, seconds) VALUES ($1, $2, $3)
        `, table),
			uuid.New(), e.Name, e.Seconds,
		); err != nil {
			fmt.Fprintf(os.Stderr, "error inserting %s: %v\n", e.Name, err)
			errs++
			continue
		}
		inserted++
	}

	fmt.Printf(
		"Leaderboard seed complete: %d total, %d inserted, %d errors\n",
		len(entries), inserted, errs,
	)
}
