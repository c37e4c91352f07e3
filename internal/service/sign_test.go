package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
	"github.com/emilykangdev/CanIParkHere/internal/repository/memory"
)

func testPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func signBackend(t *testing.T, analysis domain.SignAnalysis, gotBody *signImageRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check-parking-image":
			if gotBody != nil {
				if err := json.NewDecoder(r.Body).Decode(gotBody); err != nil {
					t.Errorf("backend received bad body: %v", err)
				}
			}
			json.NewEncoder(w).Encode(analysis)
		case "/followup-question":
			json.NewEncoder(w).Encode(domain.FollowUpResponse{Answer: "Until 6pm."})
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCheckImageStoresSession(t *testing.T) {
	analysis := domain.SignAnalysis{
		IsParkingSignFound: "true",
		CanPark:            "false",
		Reason:             "Tow-away zone until 6pm",
		Rules:              "No parking 8am-6pm Mon-Fri",
	}
	var received signImageRequest
	backend := signBackend(t, analysis, &received)
	defer backend.Close()

	sessions := memory.NewSessionStore()
	svc := NewSignService(NewSignAIBridge(backend.URL), sessions, nil)

	at := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	resp, err := svc.CheckImage(context.Background(), testPNG(t, 40, 60), at)
	if err != nil {
		t.Fatalf("CheckImage returned error: %v", err)
	}

	if resp.MessageType != "parking" {
		t.Fatalf("MessageType = %q; want parking", resp.MessageType)
	}
	if resp.CanPark != "false" || resp.Reason != analysis.Reason {
		t.Fatalf("analysis not passed through: %+v", resp.SignAnalysis)
	}
	if resp.IsMock {
		t.Fatal("IsMock = true with a live backend")
	}

	// Backend must have received a decodable JPEG with the formatted time.
	jpeg, err := base64.StdEncoding.DecodeString(received.ImageBase64)
	if err != nil {
		t.Fatalf("backend payload is not base64: %v", err)
	}
	if len(jpeg) == 0 {
		t.Fatal("backend received an empty image")
	}
	if received.Datetime != "Mon 09:00AM" {
		t.Fatalf("backend datetime = %q; want Mon 09:00AM", received.Datetime)
	}

	stored, ok, err := sessions.Get(context.Background(), resp.SessionID)
	if err != nil || !ok {
		t.Fatalf("session %q not stored (ok=%v err=%v)", resp.SessionID, ok, err)
	}
	if stored.Rules != analysis.Rules {
		t.Fatalf("stored analysis %+v; want %+v", stored, analysis)
	}
}

func TestCheckImageNoSignFound(t *testing.T) {
	backend := signBackend(t, domain.SignAnalysis{IsParkingSignFound: "false", CanPark: "uncertain"}, nil)
	defer backend.Close()

	svc := NewSignService(NewSignAIBridge(backend.URL), memory.NewSessionStore(), nil)
	resp, err := svc.CheckImage(context.Background(), testPNG(t, 10, 10), time.Now())
	if err != nil {
		t.Fatalf("CheckImage returned error: %v", err)
	}
	if resp.MessageType != "error" {
		t.Fatalf("MessageType = %q; want error when no sign is found", resp.MessageType)
	}
}

func TestCheckImageDownscalesLargePhotos(t *testing.T) {
	var received signImageRequest
	backend := signBackend(t, domain.SignAnalysis{IsParkingSignFound: "true", CanPark: "true"}, &received)
	defer backend.Close()

	svc := NewSignService(NewSignAIBridge(backend.URL), memory.NewSessionStore(), nil)
	if _, err := svc.CheckImage(context.Background(), testPNG(t, 2048, 1536), time.Now()); err != nil {
		t.Fatalf("CheckImage returned error: %v", err)
	}

	jpeg, err := base64.StdEncoding.DecodeString(received.ImageBase64)
	if err != nil {
		t.Fatal(err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(jpeg))
	if err != nil {
		t.Fatalf("backend payload is not a decodable image: %v", err)
	}
	if cfg.Width > maxSignImageDim || cfg.Height > maxSignImageDim {
		t.Fatalf("image shipped at %dx%d; want both edges <= %d", cfg.Width, cfg.Height, maxSignImageDim)
	}
}

func TestCheckImageRejectsGarbage(t *testing.T) {
	svc := NewSignService(NewSignAIBridge("http://127.0.0.1:1"), memory.NewSessionStore(), nil)
	_, err := svc.CheckImage(context.Background(), strings.NewReader("not an image"), time.Now())
	if err == nil {
		t.Fatal("CheckImage accepted garbage input")
	}
}

func TestAnalyzeSignFallsBackToMock(t *testing.T) {
	bridge := NewSignAIBridge("http://127.0.0.1:1")
	analysis, err := bridge.AnalyzeSign(context.Background(), []byte{0xff, 0xd8}, time.Now())
	if err != nil {
		t.Fatalf("AnalyzeSign returned error: %v", err)
	}
	if !analysis.IsMock {
		t.Fatal("IsMock = false with an unreachable backend")
	}
	if analysis.CanPark != "uncertain" {
		t.Fatalf("mock CanPark = %q; want uncertain", analysis.CanPark)
	}
}

func TestAnalyzeSignFallsBackOnServerError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	bridge := NewSignAIBridge(backend.URL)
	analysis, err := bridge.AnalyzeSign(context.Background(), []byte{0xff, 0xd8}, time.Now())
	if err != nil {
		t.Fatalf("AnalyzeSign returned error: %v", err)
	}
	if !analysis.IsMock {
		t.Fatal("IsMock = false after a 500 from the backend")
	}
}

func TestFollowUpAsk(t *testing.T) {
	backend := signBackend(t, domain.SignAnalysis{}, nil)
	defer backend.Close()

	sessions := memory.NewSessionStore()
	sessions.Put(context.Background(), "s1", domain.SignAnalysis{Rules: "No parking 8am-6pm"})

	svc := NewFollowUpService(NewSignAIBridge(backend.URL), sessions)

	answer, err := svc.Ask(context.Background(), "s1", "Until when?", time.Now())
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if answer != "Until 6pm." {
		t.Fatalf("answer = %q; want backend answer", answer)
	}

	if _, err := svc.Ask(context.Background(), "missing", "Hi?", time.Now()); err != ErrSessionNotFound {
		t.Fatalf("err = %v; want ErrSessionNotFound", err)
	}
}

func TestBridgeHealth(t *testing.T) {
	backend := signBackend(t, domain.SignAnalysis{}, nil)
	defer backend.Close()

	if err := NewSignAIBridge(backend.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if err := NewSignAIBridge("http://127.0.0.1:1").Health(context.Background()); err == nil {
		t.Fatal("Health succeeded against an unreachable backend")
	}
}
