package httpdto

// CreateGroupRequest is used for POST /v1/conversations/group
type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required"`
	Picture   string   `json:"picture,omitempty"`
	MemberIDs []string `json:"memberIds"`
}

// UpdateConversationRequest is used for PATCH /v1/conversations/:id
type UpdateConversationRequest struct {
	Name    *string `json:"name,omitempty"`
	Picture *string `json:"picture,omitempty"`
}

// AddMemberRequest is used for POST /v1/conversations/:id/members
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// ChangeAdminRequest is used for PATCH /v1/conversations/:id/members/:user_id
type ChangeAdminRequest struct {
	Role string `json:"role" binding:"required"`
}
