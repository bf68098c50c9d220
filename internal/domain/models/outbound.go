package models

// OutboundMessageRequest is a text notification pushed to a WhatsApp recipient.
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}
