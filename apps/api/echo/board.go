package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core/board"
	activitysvc "github.com/longlg88/wallyhub/services/activity"
)

type boardApi struct {
	svc *board.Service
}

func registerBoardAPI(g *echo.Group, teacherJWT echo.MiddlewareFunc, svc *board.Service) {
	api := boardApi{svc: svc}

	bg := g.Group("/boards")
	bg.GET("/:id", api.retrieve)

	// teacher endpoints
	bg.POST("", api.create, teacherJWT)
	bg.PATCH("/:id/active", api.setActive, teacherJWT)
	bg.GET("", api.mine, teacherJWT)
}

// Handlers

func (api *boardApi) create(ctx echo.Context) error {
	var data board.NewBoard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBoard")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	data.OwnerID = claims.Subject

	b, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *boardApi) retrieve(ctx echo.Context) error {
	b, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (api *boardApi) setActive(ctx echo.Context) error {
	var data setActiveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to setActiveRequest")
	}
	if data.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_active is required")
	}
	if err := api.svc.SetActive(ctx.Request().Context(), ctx.Param("id"), *data.IsActive); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *boardApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	boards, err := api.svc.ByOwner(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, boards)
}

type activityApi struct {
	svc *activitysvc.Service
}

func registerActivityAPI(g *echo.Group, teacherJWT echo.MiddlewareFunc, svc *activitysvc.Service) {
	api := activityApi{svc: svc}
	g.GET("/activity", api.recent, teacherJWT)
}

func (api *activityApi) recent(ctx echo.Context) error {
	n, _ := strconv.Atoi(ctx.QueryParam("limit"))
	events, err := api.svc.Recent(ctx.Request().Context(), n)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, events)
}
