package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"time"
)

const attachmentName = "fire_alert.jpg"

// BuildAlertMessage assembles the raw RFC 822 alert mail: a plain-text part,
// an HTML part, and optionally the triggering image as a JPEG attachment.
func BuildAlertMessage(from, to string, score float64, imageData []byte, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	timestamp := now.Format("2006-01-02 15:04:05")
	subject := mime.QEncoding.Encode("utf-8", "CẢNH BÁO: Phát hiện cháy!")

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textContent := fmt.Sprintf("CẢNH BÁO CHÁY\nĐộ tin cậy: %.2f%%\nThời gian: %s\n", score*100, timestamp)
	if err := writePart(writer, "text/plain", []byte(textContent)); err != nil {
		return nil, err
	}

	htmlContent := fmt.Sprintf(`<h2 style="color: red;">🔥 CẢNH BÁO CHÁY 🔥</h2>
<p>Độ tin cậy: <strong>%.2f%%</strong></p>
<p>Thời gian: %s</p>`, score*100, timestamp)
	if err := writePart(writer, "text/html", []byte(htmlContent)); err != nil {
		return nil, err
	}

	if len(imageData) > 0 {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", fmt.Sprintf("image/jpeg; name=%q", attachmentName))
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("could not create attachment part: %v", err)
		}
		if err := writeBase64(part, imageData); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not finalize message: %v", err)
	}

	return buf.Bytes(), nil
}

func writePart(writer *multipart.Writer, contentType string, body []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType+`; charset="utf-8"`)
	header.Set("Content-Transfer-Encoding", "base64")

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("could not create %s part: %v", contentType, err)
	}
	return writeBase64(part, body)
}

// writeBase64 encodes data with the 76-character line wrapping MIME requires.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
