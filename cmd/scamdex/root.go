package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	store        string
	dbPath       string
	collaborator string
	fast         bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "scamdex",
		Short: "Drive scam investigations from the terminal",
		Long: "scamdex runs the investigation engine locally: chat with it on stdin,\n" +
			"replay a recorded conversation, or export a stored session transcript.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&flags.store, "store", envOr("STORE_BACKEND", "sqlite"), "Session store backend: sqlite or memory")
	f.StringVar(&flags.dbPath, "db", envOr("DB_PATH", "./data/scamdex.db"), "SQLite database path")
	f.StringVar(&flags.collaborator, "collaborator", os.Getenv("COLLABORATOR_URL"), "Collaborator webhook URL (empty = fallback replies only)")
	f.BoolVar(&flags.fast, "fast", false, "Skip reply and completion delays")

	root.AddCommand(newChatCmd(&flags))
	root.AddCommand(newReplayCmd(&flags))
	root.AddCommand(newExportCmd(&flags))
	return root
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
