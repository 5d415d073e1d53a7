package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mrlokans/bookmemo/internal/cli"
	"github.com/mrlokans/bookmemo/internal/config"
	"github.com/mrlokans/bookmemo/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is a CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "search":
		runCommand(cli.NewSearchCommand(), args)

	case "resolve":
		runCommand(cli.NewResolveCommand(), args)

	case "reconcile":
		runCommand(cli.NewReconcileCommand(), args)

	case "version":
		fmt.Printf("bookmemo %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}
}

func runCommand(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve      Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  search     Search Google Books and print normalized results as JSON\n")
	fmt.Fprintf(os.Stderr, "  resolve    Print the Google Books volume id for an ISBN\n")
	fmt.Fprintf(os.Stderr, "  reconcile  Republish one reader's summaries to the public mirror\n")
	fmt.Fprintf(os.Stderr, "  version    Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
