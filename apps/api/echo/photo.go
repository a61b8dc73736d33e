package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core/photo"
)

type photoApi struct {
	svc *photo.Service
}

func registerPhotoAPI(g *echo.Group, teacherJWT echo.MiddlewareFunc, svc *photo.Service) {
	api := photoApi{svc: svc}

	pg := g.Group("/photos")
	pg.POST("", api.upload)
	pg.DELETE("/:id", api.destroy)
	pg.PATCH("/:id/visibility", api.updateVisibility)
	pg.DELETE("", api.destroySelected)

	// teacher/moderator endpoints
	pg.DELETE("/:id/moderate", api.destroyByModerator, teacherJWT)

	g.GET("/boards/:id/photos", api.boardPhotos)
	g.GET("/students/:external_id/photos", api.studentPhotos)
}

// Handlers

func (api *photoApi) upload(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return errors.Wrap(err, "reading photo form file")
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening photo form file")
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return errors.Wrap(err, "reading photo bytes")
	}

	np := photo.NewPhoto{
		Title:             ctx.FormValue("title"),
		StudentExternalID: ctx.FormValue("student_external_id"),
		BoardID:           ctx.FormValue("board_id"),
		ContentType:       file.Header.Get("Content-Type"),
		Data:              data,
	}
	p, err := api.svc.Upload(ctx.Request().Context(), np)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *photoApi) boardPhotos(ctx echo.Context) error {
	photos, err := api.svc.ForBoard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, photos)
}

func (api *photoApi) studentPhotos(ctx echo.Context) error {
	photos, err := api.svc.ForStudent(ctx.Request().Context(), ctx.Param("external_id"), ctx.QueryParam("board_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, photos)
}

func (api *photoApi) destroy(ctx echo.Context) error {
	err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("student_external_id"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *photoApi) destroyByModerator(ctx echo.Context) error {
	if err := api.svc.DeleteByModerator(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type destroySelectedRequest struct {
	PhotoIDs          []string `json:"photo_ids"`
	StudentExternalID string   `json:"student_external_id"`
}

func (api *photoApi) destroySelected(ctx echo.Context) error {
	var data destroySelectedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to destroySelectedRequest")
	}
	res := api.svc.DeleteSelected(ctx.Request().Context(), data.PhotoIDs, data.StudentExternalID)
	return ctx.JSON(http.StatusOK, res)
}

type visibilityRequest struct {
	IsVisible         *bool  `json:"is_visible" validate:"required"`
	StudentExternalID string `json:"student_external_id" validate:"required"`
}

func (api *photoApi) updateVisibility(ctx echo.Context) error {
	var data visibilityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to visibilityRequest")
	}
	if data.IsVisible == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_visible is required")
	}
	err := api.svc.UpdateVisibility(ctx.Request().Context(), ctx.Param("id"), *data.IsVisible, data.StudentExternalID)
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
