package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/TimurManjosov/ledgerrules/internal/logger"
	"github.com/TimurManjosov/ledgerrules/internal/money"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/telemetry"
)

// ===== Validation =====

type validateResponse struct {
	Valid           bool              `json:"valid"`
	Conditions      []rules.Condition `json:"conditions"`
	ConditionErrors []rules.ErrorKind `json:"conditionErrors"`
	Messages        []string          `json:"messages"` // "" for valid conditions
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req rules.ValidateRequest
	if !decodeJSON(w, r, &req, "expected fields 'conditions' and 'actions'") {
		return
	}

	res := rules.Validate(req)
	_, t := s.translator(r)

	messages := make([]string, len(res.ConditionErrors))
	for i, kind := range res.ConditionErrors {
		if kind == rules.ErrKindNone {
			telemetry.ConditionValidations.WithLabelValues("ok").Inc()
			continue
		}
		telemetry.ConditionValidations.WithLabelValues(string(kind)).Inc()
		messages[i] = rules.FieldErrorMessage(kind, t)
	}

	if !res.Valid() {
		logger.FromContext(r.Context()).Debug().Err(res.Err()).Msg("conditions rejected")
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:           res.Valid(),
		Conditions:      res.Conditions,
		ConditionErrors: res.ConditionErrors,
		Messages:        messages,
	})
}

// ===== Codec =====

type parseResponse struct {
	Condition       rules.Condition  `json:"condition"`
	Subfield        rules.Subfield   `json:"subfield"`
	FieldLabel      string           `json:"fieldLabel"`
	OperatorLabel   string           `json:"operatorLabel"`
	Operators       []rules.Operator `json:"operators"`
	ApproxThreshold *int64           `json:"approxThreshold,omitempty"`
}

// handleParse turns a wire condition into its editor form, with the labels
// and operator choices the editor needs.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var c rules.Condition
	if !decodeJSON(w, r, &c, "expected a condition object") {
		return
	}
	c = rules.Parse(c.Typed())
	_, t := s.translator(r)

	sub := rules.SubfieldFromCondition(c)
	resp := parseResponse{
		Condition:     c,
		Subfield:      sub,
		FieldLabel:    rules.LabelForField(string(c.Field), c.Options, t),
		OperatorLabel: rules.LabelForOperator(c.Op, c.Type, t),
		Operators:     rules.OperatorsForSubfield(c.Field, sub),
	}
	if c.Op == rules.OpIsApprox && c.Type == rules.TypeNumber {
		if n, ok := c.Value.(float64); ok {
			th := rules.ApproxThreshold(n)
			resp.ApproxThreshold = &th
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type unparseRequest struct {
	Condition rules.Condition `json:"condition"`
	Subfield  rules.Subfield  `json:"subfield,omitempty"`
}

// handleUnparse turns an editor condition into wire form. A subfield, when
// given, replaces the condition options.
func (s *Server) handleUnparse(w http.ResponseWriter, r *http.Request) {
	var req unparseRequest
	if !decodeJSON(w, r, &req, "expected fields 'condition' and optional 'subfield'") {
		return
	}
	c := req.Condition
	if req.Subfield != "" {
		c.Options = rules.SubfieldToOptions(c.Field, req.Subfield)
	}
	writeJSON(w, http.StatusOK, rules.Unparse(c.Typed()))
}

type valueRequest struct {
	Input        any             `json:"input"`
	Condition    rules.Condition `json:"condition"`
	NumberFormat string          `json:"numberFormat,omitempty"`
}

// handleValue applies raw editor input to a condition. Amount input is read
// in the server number format unless the request names another one.
func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !decodeJSON(w, r, &req, "expected fields 'input' and 'condition'") {
		return
	}

	format := s.format
	if req.NumberFormat != "" {
		format = money.ParseNumberFormat(req.NumberFormat)
		if string(format) != strings.ToLower(strings.TrimSpace(req.NumberFormat)) {
			BadRequestError(w, r, ErrCodeInvalidFormat, "Unknown number format: "+req.NumberFormat)
			return
		}
	}
	writeJSON(w, http.StatusOK, rules.MakeValue(req.Input, req.Condition.Typed(), format))
}

type approxResponse struct {
	Value     float64 `json:"value"`
	Threshold int64   `json:"threshold"`
}

func (s *Server) handleApproxThreshold(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		amount, ok := money.CurrencyToAmount(raw, s.format)
		if !ok {
			ValidationError(w, r, "Validation failed", map[string]string{"value": "Value must be a number"})
			return
		}
		n = amount
	}
	writeJSON(w, http.StatusOK, approxResponse{Value: n, Threshold: rules.ApproxThreshold(n)})
}
