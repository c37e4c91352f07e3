package domain

// SignAnalysis is the structured interpretation of a parking sign photo
// produced by the external sign-AI backend. The boolean-ish fields are
// strings because the backend reports "uncertain" as a third state.
type SignAnalysis struct {
	IsParkingSignFound string `json:"isParkingSignFound"` // "true" | "false"
	CanPark            string `json:"canPark"`            // "true" | "false" | "uncertain"
	Reason             string `json:"reason"`
	Rules              string `json:"rules"`
	ParsedText         string `json:"parsedText"`
	Advice             string `json:"advice"`
	IsMock             bool   `json:"is_mock,omitempty"`
}

// SignFound reports whether the backend detected a parking sign.
func (a SignAnalysis) SignFound() bool {
	return a.IsParkingSignFound == "true"
}

// SignCheckResponse is returned from a sign-photo check. SessionID keys
// the stored analysis for later follow-up questions.
type SignCheckResponse struct {
	MessageType string `json:"messageType"` // "parking" or "error", for client routing
	SessionID   string `json:"sessionId"`
	SignAnalysis
	ProcessingMethod string `json:"processingMethod"`
}

// FollowUpRequest is a follow-up question about a prior sign check.
type FollowUpRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

// FollowUpResponse carries the backend's answer to a follow-up question.
type FollowUpResponse struct {
	Answer string `json:"answer"`
}
