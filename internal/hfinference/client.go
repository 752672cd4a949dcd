// Package hfinference talks to the Hugging Face Inference API.
package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"variant-studio/internal/httpclient"
)

const maxErrorBody = 512

type Options struct {
	APIKey             string
	ImageModelURL      string
	ParaphraseModelURL string
	HTTPClient         *http.Client
	Logger             *slog.Logger
}

type Client struct {
	imageURL      string
	paraphraseURL string
	httpClient    *http.Client
	logger        *slog.Logger
}

// APIError is returned for any non-200 answer from the inference endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("huggingface API %s", e.Status)
	}
	return fmt.Sprintf("huggingface API %s: %s", e.Status, e.Body)
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Options{})
	}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		httpClient = httpclient.WithBearer(httpClient, key)
	}

	return &Client{
		imageURL:      strings.TrimSpace(opts.ImageModelURL),
		paraphraseURL: strings.TrimSpace(opts.ParaphraseModelURL),
		httpClient:    httpClient,
		logger:        logger,
	}
}

type inferenceRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters *imageParameters `json:"parameters,omitempty"`
}

type imageParameters struct {
	Seed int64 `json:"seed"`
}

// Paraphrase sends prompt to the paraphrase model and returns the first
// candidate's text. It makes exactly one request.
func (c *Client) Paraphrase(ctx context.Context, prompt string) (string, error) {
	if c.paraphraseURL == "" {
		return "", errors.New("paraphrase model url is empty")
	}

	body, err := c.post(ctx, c.paraphraseURL, inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", err
	}

	cand, err := decodeParaphrase(body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("paraphrase decoded", "kind", cand.kind.String())
	return cand.text, nil
}

// GenerateImage asks the image model for one picture and returns the raw bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	if c.imageURL == "" {
		return nil, errors.New("image model url is empty")
	}

	body, err := c.post(ctx, c.imageURL, inferenceRequest{
		Inputs:     prompt,
		Parameters: &imageParameters{Seed: seed},
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty image body")
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, url string, payload inferenceRequest) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(rawBody))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       msg,
		}
	}

	return rawBody, nil
}
