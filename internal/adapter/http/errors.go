package http

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"resume-builder/internal/export"
	"resume-builder/pkg/api"
)

// ExportFailedMessage is shown for any capture or composition failure.
const ExportFailedMessage = "Failed to generate PDF. Please try again."

// Problem is an error response with optional per-field messages.
type Problem struct {
	Code    int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (p *Problem) Error() string { return p.Message }

// validationError turns ozzo field errors into a 422 whose message is the
// first failing field in name order.
func validationError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &Problem{Code: fiber.StatusUnprocessableEntity, Message: err.Error()}
	}
	names := make([]string, 0, len(errs))
	fields := make(map[string]string, len(errs))
	for name, e := range errs {
		if e == nil {
			continue
		}
		names = append(names, name)
		fields[name] = e.Error()
	}
	sort.Strings(names)
	p := &Problem{Code: fiber.StatusUnprocessableEntity, Fields: fields}
	if len(names) > 0 {
		p.Message = fields[names[0]]
	}
	return p
}

func exportError(err error) *Problem {
	switch {
	case errors.Is(err, export.ErrExportInProgress):
		return &Problem{Code: fiber.StatusConflict, Message: "An export is already in progress."}
	case errors.Is(err, context.DeadlineExceeded):
		return &Problem{Code: fiber.StatusGatewayTimeout, Message: ExportFailedMessage}
	default:
		return &Problem{Code: fiber.StatusInternalServerError, Message: ExportFailedMessage}
	}
}

// remoteError maps a resume service failure to a response, preferring the
// service's own message over fallback.
func remoteError(err error, fallback string) *Problem {
	code := fiber.StatusBadGateway
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrNotAuthenticated):
		code = fiber.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		code = apiErr.Status
	}
	return &Problem{Code: code, Message: api.UserMessage(err, fallback)}
}

func urlParam(c *fiber.Ctx, name string) (string, error) {
	v, err := url.PathUnescape(utils.CopyString(c.Params(name)))
	if err != nil || v == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

// ErrorHandler renders every failure as {"error": message}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var p *Problem
		if errors.As(err, &p) {
			return c.Status(p.Code).JSON(p)
		}
		code := fiber.StatusInternalServerError
		msg := "internal error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, msg = fe.Code, fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
