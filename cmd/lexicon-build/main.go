// Command lexicon-build ingests a tabular lexicon source into a
// persisted, locale-scoped lexicon record a solve worker can load.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"lesmotsdatche/internal/lexsource"
	"lesmotsdatche/internal/store"
	"lesmotsdatche/internal/taboo"
)

func main() {
	_ = godotenv.Load()

	var (
		csvPath     = flag.String("csv", "", "path to the lexicon source CSV")
		locale      = flag.String("locale", "", "locale code this lexicon belongs to (fr, en, cs)")
		dbPath      = flag.String("db", envOr("DATABASE_PATH", "lesmotsdatche.db"), "SQLite database path")
		tabooCSV    = flag.String("taboo", "", "optional newline-delimited taboo word list")
		categoryCSV = flag.String("categories", "", "optional word_concept_id,category,value CSV of per-word categorisation vectors")
	)
	flag.Parse()

	if *csvPath == "" || *locale == "" {
		fmt.Fprintln(os.Stderr, "Error: -csv and -locale are required")
		os.Exit(1)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening %s: %v\n", *csvPath, err)
		os.Exit(1)
	}
	defer f.Close()

	var filters []lexsource.Filter
	if builtin := taboo.FilterFor(*locale); builtin != nil {
		filters = append(filters, builtin)
	}
	if *tabooCSV != "" {
		tf, err := os.ReadFile(*tabooCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading taboo list %s: %v\n", *tabooCSV, err)
			os.Exit(1)
		}
		filters = append(filters, lexsource.NewWordSetFilter(nonEmptyLines(string(tf))))
	}

	entries, err := lexsource.ReadCSV(f, filters...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing CSV: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no entries ingested, nothing to store")
		os.Exit(1)
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: running migrations: %v\n", err)
		os.Exit(1)
	}

	var vectors lexsource.CategoryVectors
	if *categoryCSV != "" {
		cf, err := os.Open(*categoryCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening %s: %v\n", *categoryCSV, err)
			os.Exit(1)
		}
		vectors, err = lexsource.ReadCategoryCSV(cf)
		cf.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: parsing category CSV: %v\n", err)
			os.Exit(1)
		}
	}

	rec := &store.LexiconRecord{Locale: *locale, Entries: make([]store.LexiconEntry, len(entries))}
	for i, e := range entries {
		rec.Entries[i] = store.LexiconEntry{
			Label:       e.Label,
			Description: e.Description,
			ConceptID:   e.ConceptID,
			Score:       e.Score,
			Categories:  vectors[e.ConceptID],
		}
	}

	if err := db.Lexicons().Store(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: storing lexicon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stored lexicon %s for locale %s: %d entries\n", rec.ID, rec.Locale, len(rec.Entries))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
