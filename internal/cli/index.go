package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rebuild bool

var indexCmd = &cobra.Command{
	Use:   "index [file ...]",
	Short: "Build or extend the persisted retrieval index",
	Long: `Extracts, chunks and embeds the given documents into the vector
store. With --rebuild the store is wiped first, which is the only way to
drop chunk ids left over from earlier chunking parameters.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&rebuild, "rebuild", false, "wipe the store before indexing")
}

func runIndex(cmd *cobra.Command, args []string) error {
	sess, _, idx, err := buildSession(cfg)
	if err != nil {
		return err
	}

	if rebuild {
		if err := idx.Clear(); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
		log.Info("cleared existing index")
	}

	for _, path := range args {
		if err := sess.AddDocument(path); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}

	log.Info("index ready", zap.Int("documents", sess.DocumentCount()))
	fmt.Printf("Indexed %d document(s).\n", sess.DocumentCount())
	return nil
}
