// Package handlers exposes the HTTP API. Handlers bind and validate the
// request, delegate to the services and wrap results in the standard
// response envelope.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/aster/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindRequest binds the request body into req and validates its fields.
func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msg := ""
			for _, fe := range verrs {
				msg += fmt.Sprintf("\n • Failed validation for field '%s': rule '%s' expected '%s', got '%v'.", fe.StructField(), fe.Tag(), fe.Param(), fe.Value())
			}
			return httperror.NewHTTPError(http.StatusBadRequest, msg)
		}
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// ParseUUID parses a UUID from a path parameter
func ParseUUID(c echo.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return uuid.Nil, httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return id, nil
}

// QueryInt reads an integer query parameter, falling back to def
func QueryInt(c echo.Context, param string, def int) int {
	raw := c.QueryParam(param)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return def
	}
	return value
}

// parseBodyUUID parses a UUID carried in a request body or query field
func parseBodyUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", field)
	}
	return id, nil
}

// parseUUIDs parses a list of UUID strings
func parseUUIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := parseBodyUUID(value, field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SuccessResponse returns a 200 OK with data in the response envelope
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, models.Response{Success: true, Data: data})
}

// CreatedResponse returns a 201 Created with data in the response envelope
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, models.Response{Success: true, Data: data})
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}
