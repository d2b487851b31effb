package httpdto

// SendMessageRequest is used for POST /v1/conversations/:id/messages
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PresignUploadRequest is used for POST /v1/uploads/presign
type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType,omitempty"`
}
