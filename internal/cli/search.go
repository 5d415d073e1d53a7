package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/providers/googlebooks"
)

const commandTimeout = 30 * time.Second

// SearchCommand queries Google Books and prints the normalized results.
type SearchCommand struct {
	Query      string
	MaxResults int
	APIKey     string
	BaseURL    string

	out io.Writer
}

func NewSearchCommand() *SearchCommand {
	return &SearchCommand{out: os.Stdout}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.IntVar(&cmd.MaxResults, "max", 10, "Maximum number of results")
	fs.StringVar(&cmd.APIKey, "key", os.Getenv("GOOGLE_BOOKS_API_KEY"), "Google Books API key")
	fs.StringVar(&cmd.BaseURL, "base-url", os.Getenv("GOOGLE_BOOKS_BASE_URL"), "Override the Google Books endpoint")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search -q <query> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search Google Books and print normalized books as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if providers.IsBlank(cmd.Query) {
		return fmt.Errorf("required flag -q not provided")
	}
	if cmd.MaxResults <= 0 {
		return fmt.Errorf("-max must be positive, got %d", cmd.MaxResults)
	}

	return nil
}

func (cmd *SearchCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client := googlebooks.NewClient(googlebooks.Config{
		BaseURL: cmd.BaseURL,
		APIKey:  cmd.APIKey,
	}, providers.NewHTTPClient(providers.DefaultTimeouts()), zap.NewNop(), nil)

	books, err := client.Search(ctx, cmd.Query, cmd.MaxResults)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	enc := json.NewEncoder(cmd.out)
	enc.SetIndent("", "  ")
	return enc.Encode(books)
}
