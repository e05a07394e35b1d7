//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"tourbook/internal/catalog"
	"tourbook/internal/model"

	"github.com/shopspring/decimal"
)

// generateSamplePriceFeed creates sample price feed files for local imports.
// File 1 prices flight 1, hotel 1, transfer 1 and activity 1.
// File 2 reprices hotel 1 and adds activity 2. Hotel 1 ends at 210.00.
// File 2 also carries one malformed line and one unknown category, both rejected.
func main() {
	dataDir := "data/pricefeed"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	feeds := map[string][]any{
		"pricefeed1.jsonl.gz": {
			entry(model.CategoryFlight, 1, "100.00"),
			entry(model.CategoryHotel, 1, "200.00"),
			entry(model.CategoryTransfer, 1, "50.00"),
			entry(model.CategoryActivity, 1, "30.00"),
		},
		"pricefeed2.jsonl.gz": {
			entry(model.CategoryHotel, 1, "210.00"),
			entry(model.CategoryActivity, 2, "45.50"),
			json.RawMessage(`{"category":"hotel","id":`),
			json.RawMessage(`{"category":"cruise","id":1,"price":"999"}`),
		},
	}

	for filename, lines := range feeds {
		filePath := filepath.Join(dataDir, filename)

		if err := createFeedFile(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d lines\n", filePath, len(lines))
	}

	fmt.Println("\nSample price feed files created successfully!")
	fmt.Println("Import them with: go run ./cmd/pricefeed")
}

func entry(category model.Category, id int64, price string) catalog.Entry {
	return catalog.Entry{
		Category: category,
		ID:       id,
		Price:    decimal.RequireFromString(price),
		Currency: model.CurrencyUSD,
	}
}

func createFeedFile(filePath string, lines []any) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		var raw []byte
		if msg, ok := line.(json.RawMessage); ok {
			raw = msg
		} else {
			raw, err = json.Marshal(line)
			if err != nil {
				return fmt.Errorf("failed to encode entry: %w", err)
			}
		}
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", raw); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}

	return nil
}
