package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/service/accounts"
	"deskbook/backend/internal/service/bookings"
	"deskbook/backend/internal/service/seats"
	"deskbook/backend/internal/store"
)

type bookingsService interface {
	IsSeatAvailable(ctx context.Context, in bookings.AvailabilityInput) (bool, error)
	CreateBookings(ctx context.Context, in bookings.CreateInput) (store.BatchResult, error)
	List(ctx context.Context, caller domain.Caller, in bookings.ListInput) ([]domain.Booking, error)
	Occupancy(ctx context.Context, date string) ([]domain.Booking, error)
	Get(ctx context.Context, caller domain.Caller, bookingID uuid.UUID) (domain.Booking, error)
	Cancel(ctx context.Context, caller domain.Caller, bookingID uuid.UUID) error
}

type seatsService interface {
	List(ctx context.Context) ([]domain.Seat, error)
	Get(ctx context.Context, seatID uuid.UUID) (domain.Seat, error)
	Create(ctx context.Context, in seats.CreateInput) (domain.Seat, error)
	Update(ctx context.Context, seatID uuid.UUID, in seats.UpdateInput) (domain.Seat, error)
	Delete(ctx context.Context, seatID uuid.UUID) error
	Block(ctx context.Context, seatID uuid.UUID, start, end string) (domain.Seat, error)
	Unblock(ctx context.Context, seatID uuid.UUID) (domain.Seat, error)
	SaveLayout(ctx context.Context, placements []store.SeatPlacement) error
}

type accountsService interface {
	Register(ctx context.Context, username, password string) (accounts.Session, error)
	Login(ctx context.Context, username, password string) (accounts.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (domain.User, error)
}

type tokenParser interface {
	Parse(raw string) (domain.Caller, error)
}

type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

type Server struct {
	bookings bookingsService
	seats    seatsService
	accounts accountsService
	tokens   tokenParser
	log      *slog.Logger
}

// NewServer builds the echo instance with every route registered under /api.
func NewServer(b bookingsService, s seatsService, a accountsService, tokens tokenParser, log *slog.Logger, opts Options) *echo.Echo {
	if log == nil {
		log = slog.Default()
	}
	srv := &Server{
		bookings: b,
		seats:    s,
		accounts: a,
		tokens:   tokens,
		log:      log.With(slog.String("component", "http")),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = srv.handleEchoError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(srv.log))
	e.Use(requestTimeout(opts.RequestTimeout))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api")
	if opts.RateLimitPerSecond > 0 {
		api.Use(rateLimiter(rate.Limit(opts.RateLimitPerSecond), opts.RateLimitBurst))
	}

	api.POST("/register", srv.register)
	api.POST("/login", srv.login)

	authed := api.Group("", authenticate(tokens))
	authed.POST("/logout", srv.logout)
	authed.GET("/user", srv.me)

	authed.GET("/seats", srv.listSeats)
	authed.GET("/seats/:id", srv.getSeat)
	authed.GET("/seats/:id/availability", srv.seatAvailability)
	authed.GET("/occupancy", srv.occupancy)

	authed.GET("/bookings", srv.listBookings)
	authed.POST("/bookings", srv.createBooking)
	authed.POST("/bookings/recurring", srv.createRecurringBookings)
	authed.GET("/bookings/:id", srv.getBooking)
	authed.DELETE("/bookings/:id", srv.cancelBooking)

	admin := authed.Group("", requireAdmin)
	admin.POST("/seats", srv.createSeat)
	admin.PUT("/seats/:id", srv.updateSeat)
	admin.DELETE("/seats/:id", srv.deleteSeat)
	admin.POST("/seats/:id/block", srv.blockSeat)
	admin.POST("/seats/:id/unblock", srv.unblockSeat)
	admin.POST("/layout/default", srv.saveLayout)

	return e
}

type echoValidator struct {
	validate *validator.Validate
}

func newValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{validate: v}
}

func (v *echoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// bindAndValidate decodes the request body into dst and runs struct tags.
func bindAndValidate(c echo.Context, dst any) error {
	if err := bindBody(c, dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return errBadRequest("malformed request body")
	}
	return nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errBadRequest("id must be a UUID")
	}
	return id, nil
}
