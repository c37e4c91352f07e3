package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// timeFormat matches what the sign backend expects, e.g. "Mon 09:15AM".
const timeFormat = "Mon 03:04PM"

// SignAIBridge handles communication with the external sign-AI backend.
// The backend does the heavy lifting (vision OCR, rule interpretation);
// this side only ships images and questions over HTTP.
type SignAIBridge struct {
	serviceURL string
	httpClient *http.Client
}

// NewSignAIBridge creates a new sign-AI bridge
func NewSignAIBridge(serviceURL string) *SignAIBridge {
	return &SignAIBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type signImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	Datetime    string `json:"datetime"`
}

type followUpRequest struct {
	Summary  domain.SignAnalysis `json:"summary"`
	Question string              `json:"question"`
	Datetime string              `json:"datetime"`
}

// AnalyzeSign sends a JPEG sign photo to the backend and returns its
// structured interpretation. On transport failure or a non-200 status a
// mock interpretation is returned instead of an error, so the client
// always gets something to render.
func (b *SignAIBridge) AnalyzeSign(ctx context.Context, imageJPEG []byte, at time.Time) (domain.SignAnalysis, error) {
	body, err := json.Marshal(signImageRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(imageJPEG),
		Datetime:    at.Format(timeFormat),
	})
	if err != nil {
		return domain.SignAnalysis{}, fmt.Errorf("ai_bridge: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/check-parking-image", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.SignAnalysis{}, fmt.Errorf("ai_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return b.mockAnalysis(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return b.mockAnalysis(), nil
	}

	var analysis domain.SignAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return domain.SignAnalysis{}, fmt.Errorf("ai_bridge: failed to decode response: %w", err)
	}

	return analysis, nil
}

// Answer asks the backend a follow-up question about a prior analysis.
// Falls back to a canned answer when the backend is unreachable.
func (b *SignAIBridge) Answer(ctx context.Context, analysis domain.SignAnalysis, question string, at time.Time) (string, error) {
	body, err := json.Marshal(followUpRequest{
		Summary:  analysis,
		Question: question,
		Datetime: at.Format(timeFormat),
	})
	if err != nil {
		return "", fmt.Errorf("ai_bridge: failed to marshal follow-up: %w", err)
	}

	url := fmt.Sprintf("%s/followup-question", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai_bridge: failed to create follow-up request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return b.mockAnswer(analysis), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return b.mockAnswer(analysis), nil
	}

	var fu domain.FollowUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&fu); err != nil {
		return "", fmt.Errorf("ai_bridge: failed to decode follow-up response: %w", err)
	}

	return fu.Answer, nil
}

// Health checks sign-AI backend connectivity
func (b *SignAIBridge) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("ai_bridge: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ai_bridge: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}

// mockAnalysis is the fallback when the backend cannot be reached.
func (b *SignAIBridge) mockAnalysis() domain.SignAnalysis {
	return domain.SignAnalysis{
		IsParkingSignFound: "true",
		CanPark:            "uncertain",
		Reason:             "The sign analysis service is currently unavailable.",
		Rules:              "Unknown",
		ParsedText:         "",
		Advice:             "Check the posted sign directly, or try again in a few minutes.",
		IsMock:             true,
	}
}

func (b *SignAIBridge) mockAnswer(analysis domain.SignAnalysis) string {
	if analysis.Rules != "" && analysis.Rules != "Unknown" {
		return "I can't reach the sign analysis service right now. The rules on record are: " + analysis.Rules
	}
	return "I can't reach the sign analysis service right now. Please try again in a few minutes."
}
