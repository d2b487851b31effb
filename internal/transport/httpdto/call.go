package httpdto

// InitiateCallRequest is used for POST /v1/calls
type InitiateCallRequest struct {
	ConversationID string   `json:"conversationId" binding:"required"`
	ReceiverIDs    []string `json:"receiverIds"`
	Type           string   `json:"type,omitempty"`
}

// SetRecordingRequest is used for PATCH /v1/calls/:id/recording
type SetRecordingRequest struct {
	URL string `json:"url" binding:"required"`
}
