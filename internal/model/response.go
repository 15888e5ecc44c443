package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
// Context carries machine-checkable extras such as the per-field violation
// list on validation failures.
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Violation describes a single failed field constraint.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// AckResponse is the envelope for mutations that acknowledge success without
// returning a resource body of their own.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
