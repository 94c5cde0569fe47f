package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/dgallion1/mdvalidate/internal/capture"
	"github.com/dgallion1/mdvalidate/internal/mdast"
	"github.com/dgallion1/mdvalidate/internal/validator"
)

// ValidateRequest is the POST /api/validate body.
type ValidateRequest struct {
	Schema string `json:"schema"`
	Input  string `json:"input"`
}

// ValidateResponse reports one complete validation (EOF asserted).
type ValidateResponse struct {
	Valid    bool               `json:"valid"`
	Errors   []*validator.Error `json:"errors"`
	Captures *capture.Value     `json:"captures"`
	Farthest mdast.Position     `json:"farthest_reached"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Schema == "" {
		s.writeError(w, http.StatusBadRequest, "schema is required")
		return
	}

	v := validator.New([]byte(req.Schema))
	report := v.Validate([]byte(req.Input), true)

	resp := ValidateResponse{
		Valid:    report.Valid(),
		Errors:   report.Errors,
		Captures: report.Value,
		Farthest: report.Farthest,
	}
	if resp.Errors == nil {
		resp.Errors = []*validator.Error{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
