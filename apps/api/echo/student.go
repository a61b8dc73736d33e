package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/student"
)

type studentApi struct {
	conf *core.Config
	svc  *student.Service
}

func registerStudentAPI(g *echo.Group, conf *core.Config, svc *student.Service) {
	api := studentApi{conf: conf, svc: svc}

	sg := g.Group("/students")
	sg.POST("", api.register)
	sg.POST("/join", api.join)
	sg.POST("/login", api.login)

	g.GET("/boards/:id/students", api.roster)
}

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	s, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) join(ctx echo.Context) error {
	var data student.JoinBoard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinBoard")
	}
	s, err := api.svc.Join(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

type loginResponse struct {
	Student student.Student `json:"student"`
	Token   string          `json:"token"`
}

func (api *studentApi) login(ctx echo.Context) error {
	var data student.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	s, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, GetStudentClaims(api.conf, s))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loginResponse{Student: s, Token: token})
}

func (api *studentApi) roster(ctx echo.Context) error {
	students, err := api.svc.ByBoard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}
