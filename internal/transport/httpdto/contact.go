package httpdto

// SaveContactRequest is used for PUT /contacts/:userId
type SaveContactRequest struct {
	Alias string `json:"alias" binding:"required"`
}
