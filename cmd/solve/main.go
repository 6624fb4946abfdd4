// Command solve fills a grid template against a persisted lexicon and
// prints the resulting grid JSON.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"lesmotsdatche/internal/alphabet"
	"lesmotsdatche/internal/fill"
	"lesmotsdatche/internal/grid"
	"lesmotsdatche/internal/lexsource"
	"lesmotsdatche/internal/solver"
	"lesmotsdatche/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		templatePath = flag.String("template", "", "path to a grid template file (X = block, _ or space = open letter cell)")
		locale       = flag.String("locale", "", "locale code to resolve an alphabet and lexicon for")
		lexiconID    = flag.String("lexicon", "", "specific stored lexicon ID (default: newest for -locale)")
		dbPath       = flag.String("db", envOr("DATABASE_PATH", "lesmotsdatche.db"), "SQLite database path")
		seed         = flag.Int64("seed", 1, "base RNG seed")
		attempts     = flag.Int("attempts", 3, "number of independent solve attempts, best kept")
		maxBack      = flag.Int("max-backtracks", 200000, "backtrack budget per attempt")
		randomize    = flag.Float64("randomize", 0, "randomization probability in [0,1]; 0 is fully deterministic")
		output       = flag.String("output", "", "output file (default: stdout)")
		verbose      = flag.Bool("verbose", false, "print attempt timing and lexicon coverage to stderr")
		categoryCSV  = flag.String("categories", "", "word_concept_id,category,value CSV of per-word categorisation vectors, used with -prefer")
		prefer       = flag.String("prefer", "", "comma-separated tag=weight category preference; rebinds word scores before solving")
		maxBlockRun  = flag.Int("max-block-run", 4, "warn when a row or column has more consecutive blocks (0 disables)")
		maxBlockArea = flag.Int("max-block-cluster", 6, "warn when a rectangular block cluster exceeds this many cells (0 disables)")
	)
	flag.Parse()

	if *templatePath == "" || *locale == "" {
		fmt.Fprintln(os.Stderr, "Error: -template and -locale are required")
		os.Exit(1)
	}

	lines, err := readLines(*templatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading template: %v\n", err)
		os.Exit(1)
	}

	template, err := grid.Parse(lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing template: %v\n", err)
		os.Exit(1)
	}
	for _, v := range template.ValidateBlockPattern(*maxBlockRun, *maxBlockArea) {
		fmt.Fprintf(os.Stderr, "Warning: template: %s\n", v)
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

	lex, alpha, err := loadLexicon(ctx, db, *locale, *lexiconID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading lexicon: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		reportLexicon(lex)
	}

	if *prefer != "" {
		if *categoryCSV == "" {
			fmt.Fprintln(os.Stderr, "Error: -prefer requires -categories")
			os.Exit(1)
		}
		weights, err := parsePreference(*prefer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cf, err := os.Open(*categoryCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening %s: %v\n", *categoryCSV, err)
			os.Exit(1)
		}
		vectors, err := lexsource.ReadCategoryCSV(cf)
		cf.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: parsing category CSV: %v\n", err)
			os.Exit(1)
		}
		lex.UseScoreVector(weights.ScoreVector(vectors))
	}

	seeds := make([]int64, *attempts)
	for i := range seeds {
		seeds[i] = *seed + int64(i)
	}

	start := time.Now()
	best, allAttempts := solver.SolveBest(template, solver.AttemptConfig{
		Lexicon:                 lex,
		Seeds:                   seeds,
		MaxBacktracksPerAttempt: *maxBack,
		Randomize:               *randomize,
	})
	if best == nil {
		fmt.Fprintln(os.Stderr, "Error: no attempts ran")
		os.Exit(1)
	}
	if best.Err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no attempt fully solved the grid (%d attempts tried): %v\n", len(allAttempts), best.Err)
	}
	if *verbose {
		reportAttempts(allAttempts, time.Since(start))
	}

	data, err := best.Grid.MarshalResult(alpha, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encoding result: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(data))
}

func loadLexicon(ctx context.Context, db store.Store, locale, lexiconID string) (*fill.Lexicon, *alphabet.Alphabet, error) {
	alpha, err := alphabet.For(locale)
	if err != nil {
		return nil, nil, err
	}

	id := lexiconID
	if id == "" {
		summaries, err := db.Lexicons().List(ctx, store.LexiconFilter{Locale: locale, Limit: 1})
		if err != nil {
			return nil, nil, err
		}
		if len(summaries) == 0 {
			return nil, nil, fmt.Errorf("no stored lexicon for locale %q", locale)
		}
		id = summaries[0].ID
	}

	rec, err := db.Lexicons().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]fill.Entry, len(rec.Entries))
	for i, e := range rec.Entries {
		entries[i] = fill.Entry{Label: e.Label, Description: e.Description, ConceptID: e.ConceptID, Score: e.Score}
	}

	lex, skipped, err := fill.NewLexicon(alpha, entries)
	if err != nil {
		return nil, nil, err
	}
	if len(skipped) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d entries skipped during indexing\n", len(skipped))
	}
	return lex, alpha, nil
}

// reportLexicon prints the lexicon's size and indexed word lengths to
// stderr, bolded when stderr is an interactive terminal.
func reportLexicon(lex *fill.Lexicon) {
	label := "lexicon:"
	if isatty.IsTerminal(os.Stderr.Fd()) {
		label = "\033[1mlexicon:\033[0m"
	}
	fmt.Fprintf(os.Stderr, "%s %s words indexed across lengths %v\n", label, humanize.Comma(int64(lex.Size())), lex.Lengths())
}

// reportAttempts summarizes how many attempts ran and how long they took.
func reportAttempts(attempts []solver.AttemptResult, elapsed time.Duration) {
	solved := 0
	for _, a := range attempts {
		if a.Err == nil {
			solved++
		}
	}
	fmt.Fprintf(os.Stderr, "attempts: %d/%d solved in %s\n", solved, len(attempts), humanize.RelTime(time.Now().Add(-elapsed), time.Now(), "", ""))
}

// parsePreference turns a "films=0.8,history=0.2" flag value into the
// category-weight map the score rebinding expects.
func parsePreference(s string) (lexsource.CategoryWeights, error) {
	weights := make(lexsource.CategoryWeights)
	for _, pair := range strings.Split(s, ",") {
		tag, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("malformed preference %q (want tag=weight)", pair)
		}
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed preference weight %q: %v", value, err)
		}
		weights[strings.TrimSpace(tag)] = w
	}
	return weights, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
