package model

// RetrievedDoc is one ranked result from the vector search backend.
// Score scale is whatever the backend reports; higher means more relevant.
// Documents are per-request and never become part of session state.
type RetrievedDoc struct {
	Content string
	Score   float64
}
