package gemini

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client embeds text through the Gemini embedContent REST API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the Gemini embeddings client. The API key is read from
// the environment variable named by APIKeyEnv.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a Gemini embeddings client. A missing API key fails
// construction.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "gemini" }

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embeddingValues struct {
	Values []float64 `json:"values"`
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(text string) ([]float64, error) {
	req := embedRequest{
		Model:   "models/" + c.model,
		Content: content{Parts: []contentPart{{Text: text}}},
	}
	endpoint := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.model)

	var resp struct {
		Embedding embeddingValues `json:"embedding"`
	}
	if err := c.post(endpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return resp.Embedding.Values, nil
}

// EmbedBatch returns one vector per input text, order-preserving, using the
// batchEmbedContents endpoint.
func (c *Client) EmbedBatch(texts []string) ([][]float64, error) {
	reqs := make([]embedRequest, len(texts))
	for i, t := range texts {
		reqs[i] = embedRequest{
			Model:   "models/" + c.model,
			Content: content{Parts: []contentPart{{Text: t}}},
		}
	}
	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents", c.baseURL, c.model)

	var resp struct {
		Embeddings []embeddingValues `json:"embeddings"`
	}
	if err := c.post(endpoint, map[string]any{"requests": reqs}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}
	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Values) == 0 {
			return nil, errors.New("empty embedding returned")
		}
		out[i] = e.Values
	}
	return out, nil
}

func (c *Client) post(url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini embeddings failed: status %d: %s", resp.StatusCode, payload)
	}
	return json.Unmarshal(payload, out)
}
