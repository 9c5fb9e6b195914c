package ingest

import (
	"errors"
	"strings"

	"gocv.io/x/gocv"

	"github.com/thinh1311ss/IE105/internal/logger"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("could not decode image")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AllowedExtension reports whether ext (with leading dot) is an accepted image type.
func AllowedExtension(ext string) bool {
	return allowedExtensions[strings.ToLower(ext)]
}

// Service decodes uploaded image bytes into pixel buffers.
type Service struct {
	logger *logger.Logger
}

func NewService(logger *logger.Logger) *Service {
	return &Service{logger: logger}
}

// Decode converts raw upload bytes into a color Mat. The extension is checked
// before any decoding happens. The caller owns the Mat and must Close it when
// err is nil.
func (s *Service) Decode(raw []byte, ext string) (gocv.Mat, error) {
	if !AllowedExtension(ext) {
		s.logger.Warning("Rejected upload with extension %q", ext)
		return gocv.Mat{}, ErrUnsupportedFormat
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		s.logger.Error("Image decode failed: %v", err)
		return gocv.Mat{}, ErrDecode
	}
	if mat.Empty() {
		mat.Close()
		s.logger.Error("Image decode produced an empty buffer")
		return gocv.Mat{}, ErrDecode
	}

	s.logger.Debug("Decoded image: %dx%d, %d channels", mat.Cols(), mat.Rows(), mat.Channels())
	return mat, nil
}
