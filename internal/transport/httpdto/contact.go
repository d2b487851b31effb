package httpdto

// ContactRequestRequest is used for POST /v1/contacts
type ContactRequestRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}
