package main // CSV data importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/title-review-api/internal/config"
	"github.com/iliyamo/title-review-api/internal/database"
)

// importOrder lists the CSV files the importer understands, in foreign
// key dependency order, mapped to their target tables.
var importOrder = []struct {
	file  string
	table string
}{
	{"users.csv", "users"},
	{"category.csv", "categories"},
	{"genre.csv", "genres"},
	{"titles.csv", "titles"},
	{"genre_title.csv", "genre_title"},
	{"review.csv", "reviews"},
	{"comments.csv", "comments"},
}

// columnRenames maps CSV header names that reference other rows to the
// foreign key columns they actually live in.
var columnRenames = map[string]string{
	"author":   "author_id",
	"category": "category_id",
	"genre":    "genre_id",
	"review":   "review_id",
	"title":    "title_id",
}

func main() {
	schemaPath := flag.String("schema", "migrations/schema.sql", "path to the schema file to apply first (empty to skip)")
	dataDir := flag.String("data", "", "directory holding the CSV files to import")
	flag.Parse()

	if *dataDir == "" && *schemaPath == "" {
		log.Fatal("nothing to do: pass -schema and/or -data")
	}

	cfg := config.Load()
	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *schemaPath != "" {
		if err := applySchema(ctx, db, *schemaPath); err != nil {
			log.Fatalf("schema: %v", err)
		}
		log.Printf("schema applied from %s", *schemaPath)
	}

	if *dataDir == "" {
		return
	}
	for _, entry := range importOrder {
		path := filepath.Join(*dataDir, entry.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("skip %s: file not present", entry.file)
			continue
		}
		n, err := importCSV(ctx, db, path, entry.table)
		if err != nil {
			log.Fatalf("import %s: %v", entry.file, err)
		}
		log.Printf("imported %d rows from %s into %s", n, entry.file, entry.table)
	}
}

// applySchema executes the statements of a schema file one by one.
// Statements are separated by semicolons at end of line; the schema file
// contains no stored routines, so no delimiter handling is needed.
func applySchema(ctx context.Context, db *sql.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// importCSV loads one CSV file into the given table. The header row
// names the columns; reference columns are renamed to their _id form.
// Rows already present are left alone (INSERT IGNORE), so reruns are
// safe.
func importCSV(ctx context.Context, db *sql.DB, path, table string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if renamed, ok := columnRenames[h]; ok {
			h = renamed
		}
		cols[i] = h
	}

	query := fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ","),
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ","))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}
		count++
	}

	return count, tx.Commit()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
