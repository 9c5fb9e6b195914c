package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/thinh1311ss/IE105/internal/dto"
	"github.com/thinh1311ss/IE105/internal/logger"
	"github.com/thinh1311ss/IE105/internal/services/ingest"
)

const maxUploadBytes = 10 << 20

// Predictor runs one upload through the classification pipeline.
type Predictor interface {
	Process(raw []byte, ext, email string) (dto.Prediction, error)
}

// PredictHandler accepts a multipart upload (file + email), classifies it,
// and reports the result. Detecting fire triggers the email alert; the alert
// outcome does not change the response.
func PredictHandler(predictor Predictor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic in /api/predict: %v", rec)
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: fmt.Sprint(rec)})
			}
		}()

		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed"})
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			logger.Error("Could not parse multipart form: %v", err)
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Không có tệp trong yêu cầu"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			logger.Error("No file in request")
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Không có tệp trong yêu cầu"})
			return
		}
		defer file.Close()

		email := r.FormValue("email")
		if email == "" {
			logger.Error("No email in request")
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Vui lòng nhập email"})
			return
		}

		logger.Info("Received %s (%d bytes) for %s", header.Filename, header.Size, email)

		raw, err := io.ReadAll(file)
		if err != nil {
			logger.Error("Could not read upload: %v", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		prediction, err := predictor.Process(raw, ext, email)
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrUnsupportedFormat):
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Chỉ chấp nhận ảnh"})
			case errors.Is(err, ingest.ErrDecode):
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Không thể giải mã ảnh"})
			default:
				logger.Error("Unexpected error in /api/predict: %v", err)
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
			}
			return
		}

		response := dto.PredictResponse{
			Result:  "no_fire",
			Score:   prediction.Score,
			Message: "Không phát hiện cháy",
		}
		if prediction.IsFire {
			response.Result = "fire"
			response.Message = "Cảnh báo đã được gửi qua email"
		}
		if prediction.ImagePath != "" {
			response.ImagePath = &prediction.ImagePath
		}

		writeJSON(w, http.StatusOK, response)
	}
}
