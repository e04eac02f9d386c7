package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"deskbook/backend/internal/service/accounts"
)

func (s *Server) register(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "register", err)
	}
	sess, err := s.accounts.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, "register", err)
	}
	s.log.InfoContext(c.Request().Context(), "user registered",
		slog.String("user_id", sess.User.ID.String()),
		slog.String("username", sess.User.Username),
	)
	return c.JSON(http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "login", err)
	}
	sess, err := s.accounts.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, "login", err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// logout has nothing to revoke with stateless tokens. The client drops its
// token.
func (s *Server) logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (s *Server) me(c echo.Context) error {
	u, err := s.accounts.Me(c.Request().Context(), callerFrom(c).UserID)
	if err != nil {
		return s.fail(c, "me", err)
	}
	return c.JSON(http.StatusOK, toUserJSON(u))
}

func toSessionResponse(sess accounts.Session) sessionResponse {
	return sessionResponse{
		User:      toUserJSON(sess.User),
		Token:     sess.Token.Value,
		ExpiresAt: sess.Token.ExpiresAt,
	}
}
