package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"deskbook/backend/internal/service/accounts"
	"deskbook/backend/internal/service/bookings"
	"deskbook/backend/internal/service/seats"
	"deskbook/backend/internal/store"
)

type errorBody struct {
	Message   string   `json:"message"`
	Field     string   `json:"field,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func errBadRequest(msg string) error {
	return &badRequestError{msg: msg}
}

// fail writes the response for err and logs it at a level matching its
// kind. op names the handler for the log line.
func (s *Server) fail(c echo.Context, op string, err error) error {
	log := s.log.With(slog.String("op", op))
	ctx := c.Request().Context()

	if status, body, ok := clientError(err); ok {
		if status == http.StatusBadRequest {
			log.WarnContext(ctx, "invalid request", slog.Any("err", err))
		} else {
			log.InfoContext(ctx, "request refused", slog.Int("status", status), slog.Any("err", err))
		}
		return c.JSON(status, body)
	}

	log.ErrorContext(ctx, "request failed", slog.Any("err", err))
	return c.JSON(http.StatusInternalServerError, errorBody{Message: "internal error"})
}

func clientError(err error) (int, errorBody, bool) {
	var (
		bad      *badRequestError
		bookErr  *bookings.ValidationError
		seatErr  *seats.ValidationError
		accErr   *accounts.ValidationError
		fieldErr validator.ValidationErrors
		conflict *store.ConflictError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, errorBody{Message: bad.Error()}, true
	case errors.As(err, &bookErr):
		return http.StatusBadRequest, errorBody{Message: bookErr.Error(), Field: bookErr.Field}, true
	case errors.As(err, &seatErr):
		return http.StatusBadRequest, errorBody{Message: seatErr.Error(), Field: seatErr.Field}, true
	case errors.As(err, &accErr):
		return http.StatusBadRequest, errorBody{Message: accErr.Error(), Field: accErr.Field}, true
	case errors.As(err, &fieldErr) && len(fieldErr) > 0:
		f := fieldErr[0]
		return http.StatusBadRequest, errorBody{Message: f.Field() + " failed " + f.Tag() + " validation", Field: f.Field()}, true
	case errors.Is(err, accounts.ErrBadCredentials):
		return http.StatusUnauthorized, errorBody{Message: "Invalid username or password"}, true
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, errorBody{Message: "Forbidden"}, true
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "Not found"}, true
	case errors.As(err, &conflict):
		return http.StatusConflict, errorBody{Message: conflict.Reason}, true
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, errorBody{Message: "Conflict"}, true
	}
	return 0, errorBody{}, false
}

// handleEchoError renders errors that escape handlers, such as unknown
// routes and panics recovered by middleware.
func (s *Server) handleEchoError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		_ = c.JSON(he.Code, errorBody{Message: msg})
		return
	}
	_ = s.fail(c, "unhandled", err)
}
