//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"tourbook/internal/config"

	"github.com/jackc/pgx/v5"
)

// checkDB connects with the configured credentials and lists the tables of the
// public schema with their row counts.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	err = conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n", dbName)

	rows, err := conn.Query(ctx, "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	if len(tables) == 0 {
		fmt.Println("\nNo tables found. Start the API with DB_AUTO_MIGRATE=true to create the schema.")
		return
	}

	fmt.Println("\nTables:")
	for _, name := range tables {
		var count int64
		if err := conn.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{name}.Sanitize())).Scan(&count); err != nil {
			fmt.Fprintf(os.Stderr, "Count failed for %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("  - %-24s %d rows\n", name, count)
	}
}
