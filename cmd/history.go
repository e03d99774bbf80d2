package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deskctl/store"
)

var (
	historyTool   string
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded tool invocations",
	Long: `Show invocations recorded in the journal, newest first. With an id,
print that invocation as JSON. Only the sqlite storage backend keeps
history between runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer cfg.Close()

		if cfg.Storage.Backend == "memory" {
			fmt.Fprintln(os.Stderr, "storage backend is memory; history is not kept between runs")
		}

		journal, err := store.NewJournal(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()

		if len(args) == 1 {
			inv, err := journal.Get(args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("invocation %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(inv)
		}

		entries, err := journal.List(historyTool, historyLimit, historyOffset)
		if err != nil {
			return err
		}
		newRenderer().History(entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyTool, "tool", "", "Only show invocations of this tool")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Number of newest entries to skip")
}
