package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/config"
	"github.com/mrlokans/bookmemo/internal/database"
	"github.com/mrlokans/bookmemo/internal/mirror"
	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/tasks"
)

const reconcileTimeout = 5 * time.Minute

// ReconcileCommand republishes one reader's summaries to the public mirror
// synchronously, without going through the task queue.
type ReconcileCommand struct {
	UID          string
	DatabasePath string
	Region       string
	Endpoint     string
	Table        string
	Verbose      bool

	out io.Writer
}

func NewReconcileCommand() *ReconcileCommand {
	return &ReconcileCommand{out: os.Stdout}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (cmd *ReconcileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)

	fs.StringVar(&cmd.UID, "uid", "", "Reader uid to reconcile (required)")
	fs.StringVar(&cmd.DatabasePath, "db", envOr("DATABASE_PATH", config.DefaultDatabasePath), "Path to the local annotation database")
	fs.StringVar(&cmd.Region, "region", envOr("AWS_REGION", config.DefaultAWSRegion), "AWS region of the mirror table")
	fs.StringVar(&cmd.Endpoint, "endpoint", os.Getenv("DYNAMODB_ENDPOINT"), "DynamoDB endpoint override (e.g. DynamoDB Local)")
	fs.StringVar(&cmd.Table, "table", envOr("MIRROR_TABLE", config.DefaultMirrorTable), "Mirror table name")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reconcile -uid <uid> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Publish every public summary of a reader and remove private ones from the mirror.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if providers.IsBlank(cmd.UID) {
		return fmt.Errorf("required flag -uid not provided")
	}
	if cmd.Table == "" {
		return fmt.Errorf("-table must not be empty")
	}

	return nil
}

func (cmd *ReconcileCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	logger := zap.NewNop()
	if cmd.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
	}

	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database not found: %s", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client, err := mirror.NewDynamoClient(ctx, cmd.Region, cmd.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	reconciler := tasks.NewReconciler(
		database.NewAnnotationStore(db, nil),
		mirror.NewMirror(client, cmd.Table, logger, nil),
		logger,
	)

	result, err := reconciler.ReconcileUser(ctx, cmd.UID)
	fmt.Fprintf(cmd.out, "Published: %d\nUnpublished: %d\nFailed: %d\n",
		result.Published, result.Unpublished, result.Failed)
	if err != nil {
		return fmt.Errorf("reconcile incomplete: %w", err)
	}
	return nil
}
