package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"workshop/src/core/usecase"
)

// Contact payload field names.
const (
	FieldMechanicAPI           = "mechanic_api"
	FieldRepeatRequestIfFailed = "repeat_request_if_failed"
	FieldNumberOfRepeats       = "number_of_repeats"
	FieldMechanicCode          = "mechanic_code"
	FieldProblemDetails        = "problem_details"
	FieldVIN                   = "vin"
)

// maxExactFloatInt is the largest integer a float64 represents exactly.
const maxExactFloatInt = 1 << 53

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic("register notblank validation: " + err.Error())
	}
	return v
}

// ContactRequest is the payload for contacting a mechanic.
//
// NumberOfRepeats only means something when RepeatRequestIfFailed is true;
// consumers read it through RetryBudget.
type ContactRequest struct {
	MechanicAPI           string `json:"mechanic_api"`
	RepeatRequestIfFailed *bool  `json:"repeat_request_if_failed,omitempty"`
	NumberOfRepeats       *int   `json:"number_of_repeats,omitempty"`
}

// RepeatsRequested reports whether the caller asked for failed calls to be repeated.
func (r ContactRequest) RepeatsRequested() bool {
	return r.RepeatRequestIfFailed != nil && *r.RepeatRequestIfFailed
}

// RetryBudget returns how many times a failed call may be repeated.
// It is 0 unless RepeatRequestIfFailed is true; a requested repeat with no
// explicit count defaults to 1.
func (r ContactRequest) RetryBudget() int {
	if !r.RepeatsRequested() {
		return 0
	}
	if r.NumberOfRepeats == nil {
		return 1
	}
	return *r.NumberOfRepeats
}

// ToInput combines the request with its pass-through details into the use
// case input.
func (r ContactRequest) ToInput(details ContactDetails, authorization string) usecase.ContactMechanicInput {
	return usecase.ContactMechanicInput{
		MechanicAPI:    r.MechanicAPI,
		RepeatIfFailed: r.RepeatsRequested(),
		Repeats:        r.RetryBudget(),
		MechanicCode:   details.MechanicCode,
		ProblemDetails: details.ProblemDetails,
		VIN:            details.VIN,
		Authorization:  authorization,
	}
}

// ContactDetails are the descriptive fields the merchant UI sends with a
// contact request. They are forwarded to the mechanic API untouched and
// play no part in validation.
type ContactDetails struct {
	MechanicCode   string
	ProblemDetails string
	VIN            string
}

// ContactMechanicResponse wraps whatever the mechanic API answered.
type ContactMechanicResponse struct {
	ResponseFromMechanicAPI any `json:"response_from_mechanic_api"`
	Status                  int `json:"status"`
}

// ParseContactRequest validates and coerces a decoded request body into a
// ContactRequest. Unknown fields are ignored. Fields are checked in the
// order mechanic_api, repeat_request_if_failed, number_of_repeats and the
// first failure is returned.
func ParseContactRequest(raw map[string]any) (ContactRequest, error) {
	var req ContactRequest

	api, err := parseMechanicAPI(raw)
	if err != nil {
		return ContactRequest{}, err
	}
	req.MechanicAPI = api

	if v, ok := raw[FieldRepeatRequestIfFailed]; ok {
		b, ok := coerceBool(v)
		if !ok {
			return ContactRequest{}, &ValidationError{Field: FieldRepeatRequestIfFailed, Reason: ReasonTypeMismatch}
		}
		req.RepeatRequestIfFailed = &b
	}

	if v, ok := raw[FieldNumberOfRepeats]; ok {
		n, ok := coerceInt(v)
		if !ok {
			return ContactRequest{}, &ValidationError{Field: FieldNumberOfRepeats, Reason: ReasonTypeMismatch}
		}
		req.NumberOfRepeats = &n
	}

	return req, nil
}

// ParseContactDetails extracts the pass-through fields from a decoded
// request body. Missing or null fields come back empty.
func ParseContactDetails(raw map[string]any) ContactDetails {
	return ContactDetails{
		MechanicCode:   stringify(raw[FieldMechanicCode]),
		ProblemDetails: stringify(raw[FieldProblemDetails]),
		VIN:            stringify(raw[FieldVIN]),
	}
}

func parseMechanicAPI(raw map[string]any) (string, error) {
	// Anything other than a non-blank string counts as missing.
	s, ok := raw[FieldMechanicAPI].(string)
	if !ok {
		return "", &ValidationError{Field: FieldMechanicAPI, Reason: ReasonRequired}
	}
	if err := validate.Var(s, "notblank"); err != nil {
		return "", &ValidationError{Field: FieldMechanicAPI, Reason: ReasonRequired}
	}
	return s, nil
}

func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "on", "1":
			return true, true
		case "false", "f", "no", "n", "off", "0":
			return false, true
		}
	case float64:
		return numericBool(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return false, false
		}
		return numericBool(f)
	case int:
		if t == 1 || t == 0 {
			return t == 1, true
		}
	case int64:
		if t == 1 || t == 0 {
			return t == 1, true
		}
	}
	return false, false
}

func numericBool(f float64) (bool, bool) {
	switch f {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return false, false
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return integralFloat(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	}
	return 0, false
}

func integralFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > maxExactFloatInt {
		return 0, false
	}
	return int(f), true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
