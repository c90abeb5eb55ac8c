package server

import (
	"encoding/json"
	"net/http"
)

// Response details returned to clients. They say that a step failed, never why.
const (
	detailMissingCode    = "Missing authorization code"
	detailTokenFailed    = "Failed to retrieve token"
	detailProfileFailed  = "Failed to retrieve user profile"
	detailDatabase       = "Database Error"
	detailInternalServer = "Internal Server Error"
)

type detailResp struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResp{Detail: detail})
}

func badRequest(w http.ResponseWriter, detail string) { writeDetail(w, http.StatusBadRequest, detail) }
func serverErr(w http.ResponseWriter, detail string) { writeDetail(w, http.StatusInternalServerError, detail) }
