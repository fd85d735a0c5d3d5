package files

type UploadResponse struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}
