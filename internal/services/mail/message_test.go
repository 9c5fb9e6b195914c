package mail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"
)

func parseMessage(t *testing.T, raw []byte) (*mail.Message, *multipart.Reader) {
	t.Helper()

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Could not parse message: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("Could not parse Content-Type: %v", err)
	}
	if mediaType != "multipart/mixed" {
		t.Fatalf("Expected multipart/mixed, got %s", mediaType)
	}

	return msg, multipart.NewReader(msg.Body, params["boundary"])
}

func decodePart(t *testing.T, part *multipart.Part) []byte {
	t.Helper()

	raw, err := io.ReadAll(part)
	if err != nil {
		t.Fatalf("Could not read part: %v", err)
	}

	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		t.Fatalf("Could not decode part body: %v", err)
	}
	return decoded
}

func TestBuildAlertMessage_Headers(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	raw, err := BuildAlertMessage("alerts@example.com", "user@example.com", 0.8765, nil, now)
	if err != nil {
		t.Fatalf("BuildAlertMessage failed: %v", err)
	}

	msg, _ := parseMessage(t, raw)

	if got := msg.Header.Get("From"); got != "alerts@example.com" {
		t.Errorf("Expected From alerts@example.com, got %s", got)
	}
	if got := msg.Header.Get("To"); got != "user@example.com" {
		t.Errorf("Expected To user@example.com, got %s", got)
	}

	decoder := new(mime.WordDecoder)
	subject, err := decoder.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("Could not decode subject: %v", err)
	}
	if subject != "CẢNH BÁO: Phát hiện cháy!" {
		t.Errorf("Unexpected subject: %s", subject)
	}
}

func TestBuildAlertMessage_TextAndHTMLParts(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	raw, err := BuildAlertMessage("alerts@example.com", "user@example.com", 0.8, nil, now)
	if err != nil {
		t.Fatalf("BuildAlertMessage failed: %v", err)
	}

	_, reader := parseMessage(t, raw)

	textPart, err := reader.NextPart()
	if err != nil {
		t.Fatalf("Missing text part: %v", err)
	}
	text := string(decodePart(t, textPart))
	if !strings.Contains(text, "80.00%") {
		t.Errorf("Text part missing confidence percentage: %s", text)
	}
	if !strings.Contains(text, "2025-06-15 14:30:00") {
		t.Errorf("Text part missing timestamp: %s", text)
	}

	htmlPart, err := reader.NextPart()
	if err != nil {
		t.Fatalf("Missing HTML part: %v", err)
	}
	if !strings.HasPrefix(htmlPart.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Expected text/html part, got %s", htmlPart.Header.Get("Content-Type"))
	}
	html := string(decodePart(t, htmlPart))
	if !strings.Contains(html, "<strong>80.00%</strong>") {
		t.Errorf("HTML part missing styled confidence: %s", html)
	}

	if _, err := reader.NextPart(); err != io.EOF {
		t.Errorf("Expected exactly two parts without attachment, got extra part (err=%v)", err)
	}
}

func TestBuildAlertMessage_Attachment(t *testing.T) {
	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03, 0xFF, 0xD9}
	raw, err := BuildAlertMessage("alerts@example.com", "user@example.com", 0.9, imageData, time.Now())
	if err != nil {
		t.Fatalf("BuildAlertMessage failed: %v", err)
	}

	_, reader := parseMessage(t, raw)

	// Skip text and HTML parts.
	for i := 0; i < 2; i++ {
		if _, err := reader.NextPart(); err != nil {
			t.Fatalf("Missing part %d: %v", i, err)
		}
	}

	attachment, err := reader.NextPart()
	if err != nil {
		t.Fatalf("Missing attachment part: %v", err)
	}
	if attachment.FileName() != "fire_alert.jpg" {
		t.Errorf("Expected attachment fire_alert.jpg, got %s", attachment.FileName())
	}

	decoded := decodePart(t, attachment)
	if !bytes.Equal(decoded, imageData) {
		t.Error("Attachment bytes do not round-trip")
	}
}
