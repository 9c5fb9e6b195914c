package dto

// Prediction is the outcome of one classification pass.
type Prediction struct {
	IsFire    bool
	Score     float64
	ImagePath string // debug copy on disk, empty if the write failed
}

// PredictResponse is the wire format of POST /api/predict.
type PredictResponse struct {
	Result    string  `json:"result"`
	Score     float64 `json:"score"`
	Message   string  `json:"message"`
	ImagePath *string `json:"image_path"`
}

// ErrorResponse is the wire format of every 4xx/5xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
