package models

import "encoding/json"

// WineAnalysisRequest is the body of a label analysis call
type WineAnalysisRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// WineAnalysisResponse is returned when a label was analyzed successfully.
// Data is the JSON value found in the model reply, passed through unchanged.
type WineAnalysisResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// ImageSearchRequest is the body of an image search call
type ImageSearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// ImageSearchResult is returned by the image search endpoint. ImageURL is
// null whenever no image could be provided.
type ImageSearchResult struct {
	Success  bool    `json:"success"`
	ImageURL *string `json:"imageUrl"`
	Message  string  `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// HealthResponse reports which upstream credentials are present
type HealthResponse struct {
	Status           string `json:"status"`
	OpenAIConfigured bool   `json:"openaiConfigured"`
	GoogleConfigured bool   `json:"googleConfigured"`
}
