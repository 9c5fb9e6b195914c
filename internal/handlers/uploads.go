package handlers

import (
	"net/http"

	"github.com/thinh1311ss/IE105/internal/dto"
	"github.com/thinh1311ss/IE105/internal/logger"
)

// UploadLister exposes the stored debug copies of accepted uploads.
type UploadLister interface {
	List() ([]string, int64, error)
	MaxBytes() int64
}

// UploadsHandler lists the debug copies kept in the upload folder.
func UploadsHandler(store UploadLister, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed"})
			return
		}

		uploads, size, err := store.List()
		if err != nil {
			logger.Error("Could not list uploads: %v", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Unable to read upload folder"})
			return
		}

		writeJSON(w, http.StatusOK, dto.UploadsData{
			Uploads: uploads,
			Size:    size,
			MaxSize: store.MaxBytes(),
			Length:  len(uploads),
		})
	}
}
