// Package classifier is the HTTP client of the job scam classifier API.
//
// The classifier is a separate service (by default on http://localhost:8000)
// exposing three endpoints:
//
//   - POST /analyze: classify posting text and return highlighted phrases
//   - POST /report: submit a posting the user believes is a scam
//   - GET /health: report whether the model is loaded
//
// # Usage
//
//	client, err := classifier.NewClient("http://localhost:8000",
//	    classifier.WithTimeout(30*time.Second))
//	if err != nil {
//	    return err
//	}
//	result, err := client.Analyze(ctx, model.AnalysisRequest{Text: text})
//
// Non-2xx responses are returned as *APIError. Connection failures wrap
// ErrServiceUnavailable or ErrServiceTimeout.
package classifier
