package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roamio/roamio-api/internal/types"
)

var validate = validator.New()

// PlanRequest is the decoded body of /plan and /api/plan-complete. It
// accepts both JSON and form encoding.
type PlanRequest struct {
	Start         string   `json:"start_city" validate:"required,min=2,max=64"`
	End           string   `json:"end_city" validate:"required,min=2,max=64"`
	StrategyNames []string `json:"strategies" validate:"omitempty,max=4,dive,oneof=fastest scenic cultural budget"`
	Enrich        bool     `json:"include_details"`
}

// Validate checks field constraints. City existence is the catalog's job.
func (r PlanRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%s: %w", validationMessage(err), types.ErrBadRequest)
	}
	return nil
}

// Strategies converts the validated names, defaulting to all strategies
// when none were requested.
func (r PlanRequest) Strategies() []types.Strategy {
	if len(r.StrategyNames) == 0 {
		return types.AllStrategies
	}
	out := make([]types.Strategy, len(r.StrategyNames))
	for i, name := range r.StrategyNames {
		out[i] = types.Strategy(name)
	}
	return out
}

// ParsePlanRequest decodes a JSON or form body into a PlanRequest.
func ParsePlanRequest(r *http.Request) (PlanRequest, error) {
	var req PlanRequest

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("malformed JSON body: %w", types.ErrBadRequest)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("malformed form body: %w", types.ErrBadRequest)
		}
		req.Start = r.PostFormValue("start_city")
		req.End = r.PostFormValue("end_city")
		if raw := r.PostFormValue("strategies"); raw != "" {
			for _, name := range strings.Split(raw, ",") {
				if name = strings.TrimSpace(name); name != "" {
					req.StrategyNames = append(req.StrategyNames, name)
				}
			}
		}
		if raw := r.PostFormValue("include_details"); raw != "" {
			enrich, err := strconv.ParseBool(raw)
			if err != nil {
				return req, fmt.Errorf("include_details must be a boolean: %w", types.ErrBadRequest)
			}
			req.Enrich = enrich
		}
	}

	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
	return req, nil
}

// validationMessage flattens the first validator error into a readable
// message for the failure envelope.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fieldName(fe.Field()) + " is required"
		case "oneof":
			return fieldName(fe.Field()) + " must be one of: fastest, scenic, cultural, budget"
		default:
			return fieldName(fe.Field()) + " is invalid"
		}
	}
	return "invalid request"
}

func fieldName(structField string) string {
	switch structField {
	case "Start":
		return "start_city"
	case "End":
		return "end_city"
	case "StrategyNames":
		return "strategies"
	default:
		return structField
	}
}
