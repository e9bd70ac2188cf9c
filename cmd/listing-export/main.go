package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raine/reseller-lens/config"
	"github.com/raine/reseller-lens/internal/batch"
	"github.com/raine/reseller-lens/internal/export"
	"github.com/raine/reseller-lens/internal/listing"
	"github.com/raine/reseller-lens/internal/llm"
	"github.com/raine/reseller-lens/internal/profit"
	"github.com/raine/reseller-lens/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var costStr, format, out, contractName, parsePath string
	var minFields int
	var noCache, verbose bool

	flag.StringVar(&costStr, "cost", "", "What you paid per item, e.g. 500")
	flag.StringVar(&format, "format", "csv", "Export format: csv or xlsx")
	flag.StringVar(&out, "out", "", "Output file (default: listings_<date>_<id>.<format>)")
	flag.StringVar(&contractName, "contract", listing.ContractBatch, "Response contract: batch or listing")
	flag.IntVar(&minFields, "min-fields", listing.MinCanonicalFields, "Fields of title, price, description, tip an item needs to be exported")
	flag.StringVar(&parsePath, "parse", "", "Parse a saved raw response file and print the record instead of calling the model")
	flag.BoolVar(&noCache, "no-cache", false, "Skip the generation cache")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image>...\n       %s -parse <response.txt> [-contract listing]\n\nFlags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	contract, err := listing.ContractByName(contractName)
	if err != nil {
		fatal("%v", err)
	}

	if parsePath != "" {
		runParse(parsePath, contract)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if format != "csv" && format != "xlsx" {
		fatal("unknown format %q (use csv or xlsx)", format)
	}

	var opts []batch.Option
	opts = append(opts, batch.WithMinFields(minFields))
	if costStr != "" {
		cost, err := profit.ParseCost(costStr)
		if err != nil {
			fatal("invalid -cost: %v", err)
		}
		opts = append(opts, batch.WithCost(cost))
	}

	items := make([]batch.Item, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fatal("failed to read image: %v", err)
		}
		items = append(items, batch.Item{ID: path, Data: data, MIMEType: getMimeType(path)})
	}

	// Load env file from user config directory (same as main bot)
	config.LoadEnvFile()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fatal("GEMINI_API_KEY not set")
	}
	model := os.Getenv("GEMINI_MODEL")

	ctx := context.Background()
	var generator llm.Generator
	gemini, err := llm.NewGeminiGenerator(ctx, apiKey, model)
	if err != nil {
		fatal("%v", err)
	}
	generator = gemini

	if !noCache {
		dbPath := os.Getenv("RESELLER_DB_PATH")
		if dbPath == "" {
			dbPath = config.DefaultDBPath
		}
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			fatal("error opening database at %s: %v", dbPath, err)
		}
		defer store.Close()
		generator = llm.NewCachedGenerator(gemini, store)
	}

	prompt := contract.Prompt()
	request := func(ctx context.Context, item batch.Item) (string, error) {
		gen, err := generator.Generate(ctx, prompt, []llm.Image{{Data: item.Data, MIMEType: item.MIMEType}})
		if err != nil {
			return "", err
		}
		return gen.Text, nil
	}
	opts = append(opts, batch.WithProgress(func(p batch.Progress) {
		fmt.Fprintf(os.Stderr, "\r%d/%d (%.0f%%)", p.Completed, p.Total, p.Fraction()*100)
	}))

	result := batch.Process(ctx, items, request, contract, opts...)
	fmt.Fprintln(os.Stderr)

	for _, o := range result.Outcomes {
		if o.Status != batch.StatusOK {
			fmt.Fprintf(os.Stderr, "skipped %s: %s: %v\n", o.ItemID, o.Status, o.Err)
		}
	}

	var data []byte
	if format == "xlsx" {
		data, err = export.EncodeXLSX(result)
	} else {
		data, err = export.EncodeCSV(result)
	}
	if err != nil {
		fatal("failed to encode export: %v", err)
	}

	if out == "" {
		out = export.BuildFilename("listings", uuid.NewString(), format, time.Now())
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fatal("failed to write %s: %v", out, err)
	}

	fmt.Printf("Exported %d of %d items to %s\n", result.Succeeded, result.Attempted, out)
	if total := result.TotalProfit(); total.Valid {
		fmt.Printf("Total profit: %s\n", profit.FormatMoney(total.Value))
	}
}

// runParse prints the record recovered from a saved response.
func runParse(path string, contract listing.Contract) {
	raw, err := os.ReadFile(path)
	if err != nil {
		fatal("failed to read response: %v", err)
	}

	rec := contract.Parse(string(raw))
	fmt.Printf("Contract:  %s (%s)\n", contract.Name, contract.Spec.Mode)
	for _, name := range contract.Spec.Names() {
		v, ok := rec.Get(name)
		if !ok {
			v = "<absent>"
		}
		fmt.Printf("%-12s %s\n", name+":", v)
	}
	if rec.Price.Valid {
		fmt.Printf("%-12s %s\n", "amount:", listing.FormatAmount(rec.Price))
	}
	if missing := rec.Missing(); len(missing) > 0 {
		fmt.Printf("Missing:   %s\n", strings.Join(missing, ", "))
	}
}

func getMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
