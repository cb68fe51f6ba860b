package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/japaniel/hanzikit/pkg/db"
	"github.com/japaniel/hanzikit/pkg/decompose"
	"github.com/japaniel/hanzikit/pkg/ingest"
	"github.com/japaniel/hanzikit/pkg/mapping"
	"github.com/japaniel/hanzikit/pkg/primitive"
	"github.com/japaniel/hanzikit/pkg/reading"
	"github.com/japaniel/hanzikit/pkg/source"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	rshFlag := flag.String("rsh", "", "Path to Heisig RSH XML (primary source)")
	idsFlag := flag.String("ids", "", "Path to IDS decomposition table (secondary source)")
	dictFlag := flag.String("dict", "", "Path to jmdict-simplified JSON (tertiary source)")
	manifestFlag := flag.String("manifest", "", "Path to primitive asset manifest JSON")
	dbFlag := flag.String("db", "hanzikit.db", "Path to SQLite deck database")
	charFlag := flag.String("char", "", "Character to decompose and print")
	urlFlag := flag.String("url", "", "URL of an article to mine for characters")
	depthFlag := flag.Int("max-depth", 0, "Decomposition depth limit (0 = table default)")
	workersFlag := flag.Int("workers", 4, "Concurrent decomposition workers for -url mode")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *rshFlag == "" && *idsFlag == "" && *dictFlag == "" {
		log.Fatal("Please provide at least one of -rsh, -ids, -dict")
	}

	table := buildTable(*rshFlag, *idsFlag, *dictFlag)
	fmt.Printf("Authoritative table: %d characters (natural depth %d)\n",
		table.Len(), table.DefaultMaxDepth())

	engine := decompose.NewEngine(table)
	engine.Logger = log.New(os.Stderr, "", log.LstdFlags)

	var manifest *primitive.Manifest
	if *manifestFlag != "" {
		var err error
		manifest, err = primitive.Load(*manifestFlag)
		if err != nil {
			log.Fatalf("Failed to load primitive manifest: %v", err)
		}
		fmt.Printf("Primitive manifest: %d assets\n", manifest.Len())
	}

	// Initialize deck DB
	conn, err := sql.Open("sqlite3", *dbFlag)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := db.InitDB(conn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	switch {
	case *charFlag != "":
		printDecomposition(conn, engine, manifest, *charFlag, *depthFlag)
	case *urlFlag != "":
		ingestArticle(ctx, conn, engine, manifest, *urlFlag, *depthFlag, *workersFlag)
	default:
		log.Fatal("Please provide a -char or -url")
	}
}

// buildTable runs the loaders in their fixed priority order and merges
// their records.
func buildTable(rshPath, idsPath, dictPath string) *mapping.Table {
	builder := mapping.NewBuilder()
	builder.Logger = log.New(os.Stderr, "", log.LstdFlags)

	if rshPath != "" {
		records, skipped, err := source.LoadRSH(rshPath)
		if err != nil {
			log.Fatalf("Failed to load RSH source: %v", err)
		}
		fmt.Printf("RSH: %d records (%d skipped)\n", len(records), skipped)
		builder.Add(records)
	}
	if idsPath != "" {
		records, skipped, err := source.LoadIDS(idsPath)
		if err != nil {
			log.Fatalf("Failed to load IDS source: %v", err)
		}
		fmt.Printf("IDS: %d records (%d skipped)\n", len(records), skipped)
		builder.Add(records)
	}
	if dictPath != "" {
		records, skipped, err := source.LoadDictionary(dictPath)
		if err != nil {
			log.Fatalf("Failed to load dictionary source: %v", err)
		}
		fmt.Printf("Dictionary: %d records (%d skipped)\n", len(records), skipped)
		builder.Add(records)
	}

	table, stats := builder.Build()
	if stats.SelfReferential > 0 || stats.UnresolvedComponents > 0 {
		fmt.Printf("Data anomalies: %d self-referential, %d unresolved components\n",
			stats.SelfReferential, stats.UnresolvedComponents)
	}
	return table
}

func printDecomposition(conn *sql.DB, engine *decompose.Engine, manifest *primitive.Manifest, char string, maxDepth int) {
	overrides, err := db.LoadOverrides(conn)
	if err != nil {
		log.Printf("Warning: failed to load deck overrides: %v", err)
	}

	node := engine.DecomposeAndResolve(char, overrides, maxDepth)
	if manifest != nil {
		if err := manifest.Apply(node); err != nil {
			log.Fatalf("Primitive substitution failed: %v", err)
		}
	}
	fmt.Print(node.String())
}

func ingestArticle(ctx context.Context, conn *sql.DB, engine *decompose.Engine, manifest *primitive.Manifest, articleURL string, maxDepth, workers int) {
	fmt.Printf("Fetching %s...\n", articleURL)

	// Create a custom request with a User-Agent to avoid being blocked.
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8,zh;q=0.7")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Error: Got status code %d", resp.StatusCode)
	}

	// Size limit keeps untrusted URLs from ballooning memory.
	const maxBodySize = 10 * 1024 * 1024
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Fatalf("Failed to read response body: %v", err)
	}
	if int64(len(bodyBytes)) >= int64(maxBodySize) {
		log.Fatalf("Response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	// Strip furigana so readings don't leak into the extracted text.
	bodyBytes = reading.SanitizeRuby(bodyBytes)

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(bytes.NewReader(bodyBytes), parsedURL)
	if err != nil {
		log.Fatalf("Failed to extract article: %v", err)
	}

	fmt.Printf("Title: %s\n", article.Title)

	chars := reading.ExtractHan(article.TextContent)
	fmt.Printf("Found %d unique characters.\n", len(chars))
	if len(chars) == 0 {
		return
	}

	analyzer, err := reading.NewAnalyzer()
	if err != nil {
		log.Printf("Warning: reading analyzer unavailable: %v", err)
	}

	ig := ingest.NewIngester(conn, engine)
	ig.Manifest = manifest
	ig.Readings = analyzer
	ig.MaxDepth = maxDepth
	ig.Workers = workers
	ig.Logger = log.New(os.Stderr, "", log.LstdFlags)
	ig.OnProgress = func(current, total int) {
		fmt.Printf("  %d/%d characters\n", current, total)
	}

	written, err := ig.Ingest(ctx, chars)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	fmt.Printf("Processing complete. Wrote %d cards.\n", written)
}
