package handler

// RejectRequest is the body of POST .../reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RequestMoreInfoRequest is the body of POST .../request-info.
type RequestMoreInfoRequest struct {
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// ReviewDocumentRequest is the body of POST .../documents/{docType}/review.
type ReviewDocumentRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}
