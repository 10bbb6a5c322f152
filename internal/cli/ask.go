package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/tui"
)

var noCache bool

var askCmd = &cobra.Command{
	Use:   "ask [file ...]",
	Short: "Index documents and answer questions interactively",
	Long: `Indexes the given PDF or text files (reusing a previously persisted
index unless --no-cache is set) and starts an interactive question loop.
Questions search across all indexed documents.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "rebuild the index even if a persisted one exists")
}

func runAsk(cmd *cobra.Command, args []string) error {
	sess, retr, idx, err := buildSession(cfg)
	if err != nil {
		return err
	}

	cached := retr.Exists() && !noCache
	switch {
	case cached && len(args) == 0:
		log.Info("using persisted index", zap.String("store", cfg.VectorStore.Type))
	case cached:
		log.Info("using persisted index; skipping extraction", zap.Int("paths_given", len(args)))
	case len(args) == 0:
		return fmt.Errorf("%w: give at least one file or reuse a persisted index", domain.ErrNoDocuments)
	default:
		if noCache {
			if err := idx.Clear(); err != nil {
				return fmt.Errorf("clear index: %w", err)
			}
		}
		for _, path := range args {
			if err := sess.AddDocument(path); err != nil {
				return fmt.Errorf("index %s: %w", path, err)
			}
		}
	}

	m := tui.New(sess, sess.DocumentCount())
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
