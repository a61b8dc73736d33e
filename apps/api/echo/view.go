package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core/view"
)

type viewApi struct {
	svc *view.Service
}

func registerViewAPI(g *echo.Group, teacherJWT echo.MiddlewareFunc, svc *view.Service) {
	api := viewApi{svc: svc}

	vg := g.Group("/views", teacherJWT)
	vg.POST("", api.track)
	vg.POST("/bulk", api.markViewed)

	g.GET("/photos/:id/views", api.photoStatus, teacherJWT)
	g.POST("/photos/views/query", api.photoStatuses, teacherJWT)
	g.GET("/boards/:id/views", api.boardStatuses, teacherJWT)
	g.GET("/teachers/:id/stats", api.teacherStats, teacherJWT)
}

// Handlers

func (api *viewApi) track(ctx echo.Context) error {
	var data view.TrackView
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TrackView")
	}
	// the token, not the request body, says who is viewing
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	data.TeacherID = claims.Subject
	if err := api.svc.Track(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *viewApi) photoStatus(ctx echo.Context) error {
	status, err := api.svc.Status(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, status)
}

type statusesRequest struct {
	PhotoIDs []string `json:"photo_ids" validate:"required"`
}

func (api *viewApi) photoStatuses(ctx echo.Context) error {
	var data statusesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to statusesRequest")
	}
	statuses, err := api.svc.Statuses(ctx.Request().Context(), data.PhotoIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statuses)
}

func (api *viewApi) boardStatuses(ctx echo.Context) error {
	statuses, err := api.svc.BoardStatuses(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statuses)
}

func (api *viewApi) teacherStats(ctx echo.Context) error {
	stats, err := api.svc.TeacherStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

type markViewedRequest struct {
	PhotoIDs []string `json:"photo_ids" validate:"required"`
	BoardID  string   `json:"board_id" validate:"required"`
}

func (api *viewApi) markViewed(ctx echo.Context) error {
	var data markViewedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to markViewedRequest")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.MarkViewed(ctx.Request().Context(), data.PhotoIDs, claims.Subject, data.BoardID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusCreated)
}
