package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// FlatError is the body the balance-moving credit routes answer with: a
// readable error string, plus the shortfall when credits run out.
type FlatError struct {
	Error    string `json:"error"`
	Required *int   `json:"required,omitempty"`
	Current  *int   `json:"current,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// StatusOverrides remaps error codes onto the statuses a route documents.
type StatusOverrides map[pkgerrors.Code]int

type flatKey struct{}

// WithFlatErrors switches WriteError to the FlatError body for the rest of
// the request.
func WithFlatErrors(ctx context.Context, overrides StatusOverrides) context.Context {
	if overrides == nil {
		overrides = StatusOverrides{}
	}
	return context.WithValue(ctx, flatKey{}, overrides)
}

func flatErrors(ctx context.Context) (StatusOverrides, bool) {
	if ctx == nil {
		return nil, false
	}
	overrides, ok := ctx.Value(flatKey{}).(StatusOverrides)
	return overrides, ok
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteResult writes payload as the top-level body, without the data envelope.
func WriteResult(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteError maps err onto the error envelope, or onto FlatError when the
// request carries WithFlatErrors. Client-side failures keep their own message;
// server-side ones only expose the code's public message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.HTTPStatus < http.StatusInternalServerError {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	status := meta.HTTPStatus
	var payload any
	if overrides, flat := flatErrors(ctx); flat {
		if mapped, ok := overrides[typed.Code()]; ok {
			status = mapped
		}
		payload = flatPayload(typed, meta, msg)
	} else {
		env := ErrorEnvelope{Error: APIError{Code: string(typed.Code()), Message: msg}}
		if meta.DetailsAllowed {
			env.Error.Details = typed.Details()
		}
		payload = env
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_constraint": dump.PGConstraint,
			"violation":     dump.Violation,
			"status":        status,
		})
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(logg.WithField(ctx, "error", dump.TopMessage), "request.rejected")
		}
	}

	writeJSON(w, status, payload)
}

func flatPayload(typed *pkgerrors.Error, meta pkgerrors.Metadata, msg string) FlatError {
	out := FlatError{Error: msg}
	if !meta.DetailsAllowed {
		return out
	}
	switch typed.Code() {
	case pkgerrors.CodeInsufficientCredits:
		if details, ok := typed.Details().(map[string]any); ok {
			out.Required = intDetail(details, "required")
			out.Current = intDetail(details, "current")
		}
	case pkgerrors.CodeValidation:
		out.Details = typed.Details()
	}
	return out
}

func intDetail(details map[string]any, key string) *int {
	switch v := details[key].(type) {
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case float64:
		n := int(v)
		return &n
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
