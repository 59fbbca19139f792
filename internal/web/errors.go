package web

// errors.go turns failures into JSON error responses. The technical error is
// logged with the request ID; the client gets the mapped user message, the
// failed operation and, in diagnostic mode, the cause trace.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/propimport/internal/core"
	"github.com/JonMunkholm/propimport/internal/i18n"
	"github.com/JonMunkholm/propimport/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Trace   string `json:"trace,omitempty"`
}

// respondError logs err and writes it as an ErrorResponse.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)
	diagnostic := s.cfg.Diagnostic()

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", userMsg.Code,
		"error", err.Error(),
	)

	resp := ErrorResponse{
		Error:   localizedError(err, s.importer.Locale()),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var ie *core.ImportError
	if diagnostic && errors.As(err, &ie) {
		resp.Trace = ie.Trace
	}

	writeJSON(w, status, resp)
}

// localizedError is the message shown to the uploader in the configured
// language: a prompt for upload problems, the failed operation otherwise.
func localizedError(err error, locale *i18n.Locale) string {
	switch {
	case errors.Is(err, core.ErrNoFile):
		return locale.Sprintf(i18n.KeyNoFile)
	case errors.Is(err, core.ErrUnsupportedFile):
		return locale.Sprintf(i18n.KeyNotCSV)
	default:
		return core.FatalMessage(err, locale, false)
	}
}

// statusFor picks the HTTP status for a failed request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var ie *core.ImportError
	if errors.As(err, &ie) && ie.Op == core.OpDecode {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
