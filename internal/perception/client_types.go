package perception

// =============================================================================
// GEMINI WIRE TYPES
// =============================================================================

// GeminiRequest represents the generateContent request body.
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
	Tools    []GeminiTool    `json:"tools,omitempty"`
}

// GeminiContent is one content block.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of the content.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiTool enables a built-in capability.
type GeminiTool struct {
	GoogleSearch *GeminiGoogleSearch `json:"google_search,omitempty"`
}

// GeminiGoogleSearch enables web-grounded answering. Serialises as {}.
type GeminiGoogleSearch struct{}

// Augmented reports whether the request enables web search.
func (r GeminiRequest) Augmented() bool {
	for _, t := range r.Tools {
		if t.GoogleSearch != nil {
			return true
		}
	}
	return false
}

// GeminiResponse represents the API response. Every level is optional so
// decoding can tell "missing" from "empty".
type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
	Error         *GeminiError         `json:"error,omitempty"`
}

// GeminiCandidate is one generated answer.
type GeminiCandidate struct {
	Content      *GeminiResponseContent `json:"content"`
	FinishReason string                 `json:"finishReason,omitempty"`
}

// GeminiResponseContent holds the candidate's parts.
type GeminiResponseContent struct {
	Parts []GeminiResponsePart `json:"parts"`
	Role  string               `json:"role,omitempty"`
}

// GeminiResponsePart represents a part of the response content.
type GeminiResponsePart struct {
	Text *string `json:"text,omitempty"`
}

// GeminiUsageMetadata carries token counts.
type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// GeminiError is the error envelope returned with non-2xx statuses.
type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// geminiErrorEnvelope wraps GeminiError as it appears in error bodies.
type geminiErrorEnvelope struct {
	Error *GeminiError `json:"error"`
}
