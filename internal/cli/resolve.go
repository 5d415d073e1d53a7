package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/providers/googlebooks"
	"github.com/mrlokans/bookmemo/internal/volumes"
)

// ResolveCommand maps an ISBN onto a Google Books volume id.
type ResolveCommand struct {
	ISBN    string
	APIKey  string
	BaseURL string

	out io.Writer
}

func NewResolveCommand() *ResolveCommand {
	return &ResolveCommand{out: os.Stdout}
}

func (cmd *ResolveCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)

	fs.StringVar(&cmd.ISBN, "isbn", "", "ISBN-10 or ISBN-13 to resolve (required)")
	fs.StringVar(&cmd.APIKey, "key", os.Getenv("GOOGLE_BOOKS_API_KEY"), "Google Books API key")
	fs.StringVar(&cmd.BaseURL, "base-url", os.Getenv("GOOGLE_BOOKS_BASE_URL"), "Override the Google Books endpoint")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s resolve -isbn <isbn>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the Google Books volume id for an ISBN.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if providers.IsBlank(cmd.ISBN) {
		return fmt.Errorf("required flag -isbn not provided")
	}

	return nil
}

func (cmd *ResolveCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client := googlebooks.NewClient(googlebooks.Config{
		BaseURL: cmd.BaseURL,
		APIKey:  cmd.APIKey,
	}, providers.NewHTTPClient(providers.DefaultTimeouts()), zap.NewNop(), nil)

	volumeID, err := volumes.NewResolver(client).ResolveVolumeID(ctx, cmd.ISBN)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("no volume found for ISBN %s", cmd.ISBN)
	}
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	_, err = fmt.Fprintln(cmd.out, volumeID)
	return err
}
