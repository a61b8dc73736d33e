package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/photo"
	"github.com/longlg88/wallyhub/core/student"
	"github.com/longlg88/wallyhub/core/view"
	activitysvc "github.com/longlg88/wallyhub/services/activity"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		BoardSvc    *board.Service
		StudentSvc  *student.Service
		PhotoSvc    *photo.Service
		ViewSvc     *view.Service
		ActivitySvc *activitysvc.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(ctx context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	teacherJWT := teacherAuthMiddleware(conf)

	registerBoardAPI(v1, teacherJWT, s.opts.BoardSvc)
	registerStudentAPI(v1, conf, s.opts.StudentSvc)
	registerPhotoAPI(v1, teacherJWT, s.opts.PhotoSvc)
	registerViewAPI(v1, teacherJWT, s.opts.ViewSvc)
	registerActivityAPI(v1, teacherJWT, s.opts.ActivitySvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"service": "wallyhub", "status": "ok"})
}
