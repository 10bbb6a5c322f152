package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docqa/internal/extract"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check credentials, tools and configuration before first use",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := false
	check := func(name string, ok bool, hint string) {
		if ok {
			fmt.Printf("[OK]   %s\n", name)
			return
		}
		failed = true
		fmt.Printf("[FAIL] %s — %s\n", name, hint)
	}

	check("config", cfg != nil, "config did not load")

	genEnv := cfg.Generator.APIKeyEnv
	check(fmt.Sprintf("generation credentials (%s)", genEnv),
		os.Getenv(genEnv) != "",
		"set the environment variable or add it to .env")

	embEnv := embedderKeyEnv()
	if embEnv != "" {
		check(fmt.Sprintf("embedding credentials (%s)", embEnv),
			os.Getenv(embEnv) != "",
			"set the environment variable or add it to .env")
	}

	check("pdftotext on PATH", extract.Available(),
		"install poppler-utils to index PDF files (text files work without it)")

	if cfg.VectorStore.Type == "local" || cfg.VectorStore.Type == "" {
		err := os.MkdirAll(cfg.VectorStore.Dir, 0o755)
		check(fmt.Sprintf("vector store dir %s writable", cfg.VectorStore.Dir),
			err == nil, fmt.Sprint(err))
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func embedderKeyEnv() string {
	switch cfg.Embedder.Type {
	case "openai":
		if cfg.Embedder.OpenAI != nil {
			return cfg.Embedder.OpenAI.APIKeyEnv
		}
	case "gemini", "":
		if cfg.Embedder.Gemini != nil {
			return cfg.Embedder.Gemini.APIKeyEnv
		}
	}
	return ""
}
