package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/invoice-cli/internal/model"
)

const (
	mistralOCREndpoint  = "https://api.mistral.ai/v1/ocr"
	defaultMistralModel = "mistral-ocr-latest"
)

// MistralOCR recognizes PDFs through the Mistral OCR API, which rasterizes
// server side.
type MistralOCR struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewMistralOCR creates a MistralOCR recognizer. Empty model means the default.
func NewMistralOCR(apiKey, model string) *MistralOCR {
	if model == "" {
		model = defaultMistralModel
	}
	return &MistralOCR{
		apiKey:   apiKey,
		model:    model,
		endpoint: mistralOCREndpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type mistralOCRRequest struct {
	Model    string             `json:"model"`
	Document mistralOCRDocument `json:"document"`
}

type mistralOCRDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type mistralOCRResponse struct {
	Pages []mistralOCRPage `json:"pages"`
}

type mistralOCRPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Recognize uploads the PDF as a data URL and returns the markdown of each
// page ordered by page index.
func (m *MistralOCR) Recognize(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(model.ErrRenderFailure, "ocr: read PDF %s: %v", path, err)
	}

	body, err := json.Marshal(mistralOCRRequest{
		Model: m.model,
		Document: mistralOCRDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
	})
	if err != nil {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: marshal mistral request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: create mistral request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: mistral API call: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: read mistral response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: mistral API returned %d: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	var ocrResp mistralOCRResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return nil, eris.Wrapf(model.ErrRecognitionFailure, "ocr: unmarshal mistral response: %v", err)
	}

	sort.SliceStable(ocrResp.Pages, func(i, j int) bool { return ocrResp.Pages[i].Index < ocrResp.Pages[j].Index })
	pages := make([]string, len(ocrResp.Pages))
	for i, p := range ocrResp.Pages {
		pages[i] = p.Markdown
	}
	return pages, nil
}
