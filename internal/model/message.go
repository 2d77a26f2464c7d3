package model

// Message actions understood by the dispatcher.
const (
	// ActionHighlight asks for phrases to be marked in the current page.
	ActionHighlight = "highlight"

	// ActionAnalyze notifies that an analysis was requested.
	ActionAnalyze = "analyze"
)

// StatusReceived is the acknowledgement status of an analyze message.
const StatusReceived = "received"

// Request is a message sent to the page-side dispatcher.
type Request struct {
	// Action selects the handler.
	Action string `json:"action"`

	// Phrases is the payload of a highlight request.
	Phrases []Phrase `json:"phrases,omitempty"`
}

// Response acknowledges a Request. It reports delivery, not the outcome of
// individual phrase matches.
type Response struct {
	// Success is set for highlight requests and for rejected requests.
	Success *bool `json:"success,omitempty"`

	// Status is set for analyze acknowledgements.
	Status string `json:"status,omitempty"`

	// Error describes why a request was rejected.
	Error string `json:"error,omitempty"`
}

// NewSuccessResponse returns {"success": ok}.
func NewSuccessResponse(ok bool) Response {
	return Response{Success: &ok}
}

// NewErrorResponse returns {"success": false, "error": msg}.
func NewErrorResponse(msg string) Response {
	ok := false
	return Response{Success: &ok, Error: msg}
}

// Succeeded reports whether the response carries success=true.
func (r Response) Succeeded() bool {
	return r.Success != nil && *r.Success
}
