package perception

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"athena/internal/logging"

	"google.golang.org/genai"
)

// =============================================================================
// MODEL DIAGNOSTICS (genai SDK)
// =============================================================================

// Diagnostics lists the models visible to the configured credential.
// One unretried call sequence; used for operator troubleshooting only.
type Diagnostics struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewDiagnostics creates a Diagnostics for cfg. httpClient may be nil.
func NewDiagnostics(cfg GeminiConfig, httpClient *http.Client) *Diagnostics {
	return &Diagnostics{cfg: cfg, httpClient: httpClient}
}

// ListModels returns model ids containing "gemini", without the "models/" prefix.
func (d *Diagnostics) ListModels(ctx context.Context) ([]string, error) {
	if d.cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     d.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: d.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(d.cfg.BaseURL, "/") + "/",
			APIVersion: d.cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	page, err := client.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var names []string
	for {
		for _, m := range page.Items {
			if m == nil || !strings.Contains(m.Name, "gemini") {
				continue
			}
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return names, fmt.Errorf("list models: %w", err)
		}
	}

	logging.API("ListModels: %d gemini models visible", len(names))
	return names, nil
}
