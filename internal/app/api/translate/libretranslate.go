package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LibreTranslate implements api.Translator against a LibreTranslate
// instance. Failures degrade to returning the input text unchanged.
type LibreTranslate struct {
	baseURL    string
	sourceLang string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLibreTranslate creates a translator client for the given base URL.
func NewLibreTranslate(baseURL, sourceLang string, logger *zap.Logger) *LibreTranslate {
	return &LibreTranslate{
		baseURL:    baseURL,
		sourceLang: sourceLang,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate returns text translated into targetLang, or the original
// text when the service is unreachable or answers badly.
func (l *LibreTranslate) Translate(ctx context.Context, text, targetLang string) string {
	body, err := json.Marshal(translateRequest{Q: text, Source: l.sourceLang, Target: targetLang})
	if err != nil {
		l.logger.Warn("translation request encoding failed", zap.Error(err))
		return text
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		l.logger.Warn("translation request build failed", zap.Error(err))
		return text
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.logger.Warn("translation request failed", zap.String("target", targetLang), zap.Error(err))
		return text
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("translation service error", zap.Int("status", resp.StatusCode))
		return text
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		l.logger.Warn("translation response decoding failed", zap.Error(err))
		return text
	}
	if out.TranslatedText == "" {
		return text
	}
	return out.TranslatedText
}

// Language describes one language supported by the service.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages returns the set of languages the service supports.
func (l *LibreTranslate) Languages(ctx context.Context) ([]Language, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/languages", nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languages request failed: %w", err)
	}
	defer resp.Body.Close()

	var langs []Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("decode languages response: %w", err)
	}
	return langs, nil
}
