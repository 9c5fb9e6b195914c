package dto

type UploadsData struct {
	Uploads []string `json:"uploads"`
	Size    int64    `json:"size"`
	MaxSize int64    `json:"maxSize"`
	Length  int      `json:"length"`
}
