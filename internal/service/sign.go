package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
	"github.com/emilykangdev/CanIParkHere/internal/storage"
)

// ErrNotAnImage reports an upload that could not be decoded as an image.
var ErrNotAnImage = errors.New("sign: uploaded file is not a decodable image")

// maxSignImageDim bounds the longer edge of an image before it is
// shipped to the AI backend. Phone photos arrive at 4000px+; the sign
// text survives a downscale and the payload shrinks by an order of
// magnitude.
const maxSignImageDim = 1024

const jpegQuality = 85

// SignService runs a sign-photo check end to end: decode, downscale,
// archive, analyze, and open a follow-up session.
type SignService struct {
	bridge   *SignAIBridge
	sessions domain.SessionStore
	archive  *storage.ImageArchive // nil when no object store is configured
}

// NewSignService creates a new sign service. archive may be nil.
func NewSignService(bridge *SignAIBridge, sessions domain.SessionStore, archive *storage.ImageArchive) *SignService {
	return &SignService{
		bridge:   bridge,
		sessions: sessions,
		archive:  archive,
	}
}

// CheckImage analyzes a parking sign photo and stores the result under a
// fresh session id for follow-up questions.
func (s *SignService) CheckImage(ctx context.Context, r io.Reader, at time.Time) (domain.SignCheckResponse, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return domain.SignCheckResponse{}, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxSignImageDim || bounds.Dy() > maxSignImageDim {
		img = imaging.Fit(img, maxSignImageDim, maxSignImageDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return domain.SignCheckResponse{}, fmt.Errorf("sign: failed to encode image: %w", err)
	}

	sessionID := uuid.NewString()

	if s.archive != nil {
		jpeg := make([]byte, buf.Len())
		copy(jpeg, buf.Bytes())
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.archive.StoreImage(bgCtx, sessionID, jpeg); err != nil {
				log.Printf("Failed to archive sign image %s: %v", sessionID, err)
			}
		}()
	}

	analysis, err := s.bridge.AnalyzeSign(ctx, buf.Bytes(), at)
	if err != nil {
		return domain.SignCheckResponse{}, err
	}

	if err := s.sessions.Put(ctx, sessionID, analysis); err != nil {
		// The analysis is still useful without follow-up support.
		log.Printf("Failed to store session %s: %v", sessionID, err)
	}

	messageType := "parking"
	if !analysis.SignFound() {
		messageType = "error"
	}

	return domain.SignCheckResponse{
		MessageType:      messageType,
		SessionID:        sessionID,
		SignAnalysis:     analysis,
		ProcessingMethod: "sign_ai_backend",
	}, nil
}
