package cli

import (
	"fmt"
	"time"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	embgemini "docqa/internal/embedding/gemini"
	embopenai "docqa/internal/embedding/openai"
	gengemini "docqa/internal/generation/gemini"
	"docqa/internal/index/local"
	"docqa/internal/index/qdrant"
	"docqa/internal/retriever"
	"docqa/internal/session"
)

// clearableIndex is a vector index that supports wiping its contents for an
// explicit rebuild.
type clearableIndex interface {
	domain.VectorIndex
	Clear() error
}

func buildIndex(cfg *config.AppConfig) (clearableIndex, error) {
	switch cfg.VectorStore.Type {
	case "local", "":
		return local.Open(cfg.VectorStore.Dir)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant vector store selected but not configured")
		}
		return qdrant.New(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "gemini", "":
		g := cfg.Embedder.Gemini
		if g == nil {
			g = &config.GeminiEmbedderConfig{APIKeyEnv: "GOOGLE_API_KEY"}
		}
		return embgemini.NewClient(embgemini.Config{
			BaseURL:   g.BaseURL,
			APIKeyEnv: g.APIKeyEnv,
			Model:     g.Model,
			Timeout:   time.Duration(g.TimeoutSecs) * time.Second,
		})
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai embedder selected but not configured")
		}
		return embopenai.NewClient(embopenai.Config{
			BaseURL:   o.BaseURL,
			APIKeyEnv: o.APIKeyEnv,
			Model:     o.Model,
			BatchSize: o.BatchSize,
			Timeout:   time.Duration(o.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	return gengemini.NewClient(gengemini.Config{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
}

// buildSession assembles the full pipeline: index, retriever, embedder,
// generator, synthesizer and session. Missing credentials fail here, before
// anything touches the index.
func buildSession(cfg *config.AppConfig) (*session.Session, *retriever.Retriever, clearableIndex, error) {
	idx, err := buildIndex(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	retr := retriever.New(idx, log)
	synth := answer.New(embedder, retr, generator, cfg.Session.TopK, log)
	ch := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	sess := session.New(ch, embedder, retr, synth, cfg.Session.HistoryWindow, log)
	return sess, retr, idx, nil
}
