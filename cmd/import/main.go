package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"spirit-bot/internal/infra/sqlite3"
	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/products"
)

// columns: name,category,type,thc,price,description,special_offer
const minColumns = 5

func main() {
	dbPath := flag.String("db", "./data/spirit.db", "path to SQLite database")
	csvPath := flag.String("csv", "./products.csv", "path to CSV file with products")
	dryRun := flag.Bool("dry-run", false, "show what would be imported without writing to DB")
	flag.Parse()

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *csvPath, err)
	}
	defer file.Close()

	items, skipped, err := parseProducts(file)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *csvPath, err)
	}
	for _, reason := range skipped {
		fmt.Printf("  SKIP %s\n", reason)
	}

	if *dryRun {
		for _, p := range items {
			fmt.Printf("  DRY: %s, %s/%s, thc=%d, price=%d\n", p.Name, p.Category, p.Subtype, p.Potency, p.Price)
		}
		fmt.Printf("\nParsed: %d, Skipped: %d\n", len(items), len(skipped))
		fmt.Println("(DRY RUN - nothing was written to database)")
		return
	}

	ctx := context.Background()
	db, err := sqlite3.New(ctx, sqlite3.WithDSN(*dbPath))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	imported, err := storage.New(db.DB).ImportProducts(ctx, items)
	if err != nil {
		log.Fatalf("import failed, nothing was written: %v", err)
	}

	fmt.Printf("\nImported: %d, Skipped: %d\n", imported, len(skipped))
}

// parseProducts reads the catalog CSV. A first row starting with "name" is a header.
// Invalid rows are reported in skipped and left out.
func parseProducts(r io.Reader) (items []products.Product, skipped []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	for i, record := range records {
		row := i + 1
		if i == 0 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}

		p, err := parseRecord(record)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: %v", row, err))
			continue
		}
		items = append(items, p)
	}

	return items, skipped, nil
}

func parseRecord(record []string) (products.Product, error) {
	if len(record) < minColumns {
		return products.Product{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field(0)
	if n := utf8.RuneCountInString(name); n == 0 || n > products.MaxNameLength {
		return products.Product{}, fmt.Errorf("invalid name %q", name)
	}

	category := products.Category(strings.ToLower(field(1)))
	if !category.Valid() {
		return products.Product{}, fmt.Errorf("unknown category %q", field(1))
	}

	subtype := products.Subtype(strings.ToLower(field(2)))
	if !subtype.Valid() {
		return products.Product{}, fmt.Errorf("unknown type %q", field(2))
	}

	potency, err := strconv.Atoi(strings.TrimSuffix(field(3), "%"))
	if err != nil || potency < 0 || potency > 100 {
		return products.Product{}, fmt.Errorf("invalid thc %q", field(3))
	}

	price, err := strconv.ParseInt(field(4), 10, 64)
	if err != nil || price < 0 {
		return products.Product{}, fmt.Errorf("invalid price %q", field(4))
	}

	return products.Product{
		Name:         name,
		Category:     category,
		Subtype:      subtype,
		Potency:      potency,
		Price:        price,
		Description:  field(5),
		SpecialOffer: field(6),
		IsActive:     true,
	}, nil
}
