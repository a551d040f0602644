package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`
}

// Error renders every error as the standard envelope. Workflow gate failures
// keep their reason code so clients can react to the specific gate; anything
// unrecognized collapses to a 500 without leaking internals.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal Server Error"
		reason := ""

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			status = httperror.GetStatusCode(err)
			message = httperr.Error()
		}

		if ge, ok := workflow.AsGateError(err); ok {
			status = ge.Status
			message = ge.Message
			reason = ge.Code
			metrics.RecordGateDenial(ge.Code)
		}

		log := logger.WithContext(ctx).WithError(err)
		if status >= http.StatusInternalServerError {
			log.Error("api is returning an error")
		} else {
			log.Info("request rejected")
		}

		_ = c.JSON(status, ErrorResponse{
			Success:   false,
			Error:     message,
			Code:      reason,
			RequestID: context.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
		})
	}
}
