package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/dantour/internal/middleware"
	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/service"
)

// requestTimeout bounds the database work of one request.
const requestTimeout = 5 * time.Second

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the authenticated user id set by JWTAuth.
func getUserID(c echo.Context) (string, error) {
	if id := middleware.UserID(c); id != "" {
		return id, nil
	}
	return "", errNoUser
}

func isAdmin(c echo.Context) bool { return middleware.Role(c) == model.RoleAdmin }

// requestCtx derives the per-request context.  The request logger stored
// by the logging middleware travels with it.
func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError writes err with the status of its kind.  Unknown errors
// are logged and reported as 500 without detail.
func respondError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		fe *service.ForbiddenError
		ce *service.ConflictError
		ue *service.UnsupportedTypeError
		up *service.UpstreamError
	)
	switch {
	case errors.Is(err, errNoUser):
		return unauthorized(c)
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	case errors.As(err, &fe):
		return c.JSON(http.StatusForbidden, echo.Map{"error": fe.Error()})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": ce.Error()})
	case errors.As(err, &ue):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ue.Error()})
	case errors.As(err, &up):
		zlog.Ctx(c.Request().Context()).Error().Err(up.Err).Str("upstream", up.Upstream).Msg("upstream failure")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": up.Upstream + " unavailable"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
	}
	zlog.Ctx(c.Request().Context()).Error().Err(err).Str("route", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// queryFloat parses an optional float query parameter.
func queryFloat(c echo.Context, name string) (*float64, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "must be a number"}
	}
	return &v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(c echo.Context, name string) (*bool, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Message: "must be true or false"}
	}
	return &v, nil
}

// queryInt parses an optional integer query parameter; def is returned
// when it is absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
