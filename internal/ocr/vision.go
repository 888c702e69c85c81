// Package ocr turns bill and receipt images into raw text using the Google
// Cloud Vision REST API. Inputs are normalized to PNG first so a single
// upload path handles photos, HEIC captures and PDF e-bills alike.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// Client extracts text from document images.
type Client interface {
	// ExtractText runs OCR over an image or PDF and returns the recognized
	// text. An empty string with a nil error means the API saw no text.
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
}

// Vision implements Client using Google Cloud Vision DOCUMENT_TEXT_DETECTION.
type Vision struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewVision creates a Vision OCR client.
func NewVision(apiKey string) (*Vision, error) {
	return newVision(apiKey, defaultEndpoint)
}

func newVision(apiKey, endpoint string) (*Vision, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision api key is required")
	}
	return &Vision{
		apiKey:   apiKey,
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image        annotateImage   `json:"image"`
	Features     []visionFeature `json:"features"`
	ImageContext imageContext    `json:"imageContext"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type imageContext struct {
	LanguageHints []string `json:"languageHints"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// ExtractText runs DOCUMENT_TEXT_DETECTION over the image. Turkish comes
// first in the language hints; bills mix in English labels often enough that
// "en" stays as the second hint.
func (v *Vision) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pngData, _, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	reqBody := annotateRequest{
		Requests: []annotateEntry{{
			Image: annotateImage{
				Content: base64.StdEncoding.EncodeToString(pngData),
			},
			Features: []visionFeature{{
				Type:       "DOCUMENT_TEXT_DETECTION",
				MaxResults: 1,
			}},
			ImageContext: imageContext{
				LanguageHints: []string{"tr", "en"},
			},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", v.endpoint, v.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling vision API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, string(body))
	}

	var annotateResp annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&annotateResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(annotateResp.Responses) == 0 {
		return "", nil
	}
	first := annotateResp.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision API error: %s", first.Error.Message)
	}

	return first.FullTextAnnotation.Text, nil
}
