package response

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// FlowFailure reports a classified workflow failure. Every failure the user
// sees states whether their money is confirmed safe, so the payload always
// carries the safety line alongside the retry affordance.
func FlowFailure(w http.ResponseWriter, status int, kind, msg string, retryable, moneySafe bool, safety string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Status    string      `json:"status"`
		Kind      string      `json:"kind"`
		Message   string      `json:"message"`
		Retryable bool        `json:"retryable"`
		MoneySafe bool        `json:"money_safe"`
		Safety    string      `json:"safety"`
		Data      interface{} `json:"data,omitempty"`
	}{
		Status:    "error",
		Kind:      kind,
		Message:   msg,
		Retryable: retryable,
		MoneySafe: moneySafe,
		Safety:    safety,
		Data:      data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
