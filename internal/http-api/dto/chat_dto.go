package dto

// SendMessageRequest: payload for appending one chat message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// FAQRequest: free-text question for the FAQ responder
type FAQRequest struct {
	Question string `json:"question" binding:"required"`
}

// FAQResponse: the canned answer
type FAQResponse struct {
	Answer string `json:"answer"`
}
