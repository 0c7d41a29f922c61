package response

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps REST document responses as {"data": ...}.
type Envelope struct {
	Data any `json:"data"`
}

// CallableResult wraps callable function responses as {"result": ...}.
type CallableResult struct {
	Result any `json:"result"`
}

// WriteJSON writes v with the given status. Bodies carry user documents,
// so intermediaries must not store them.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json; charset=utf-8")
	}
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Data: data})
}

// Created answers a document write with 201 and the document's path.
func Created(w http.ResponseWriter, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteJSON(w, http.StatusCreated, Envelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func WriteCallableResult(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, CallableResult{Result: v})
}
