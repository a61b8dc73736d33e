package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

var errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

// kindStatus maps the domain error taxonomy to HTTP status codes.
var kindStatus = map[core.Kind]int{
	core.KindInvalidInput:            http.StatusBadRequest,
	core.KindDuplicateIdentifier:     http.StatusConflict,
	core.KindBoardNotFound:           http.StatusNotFound,
	core.KindBoardNotActive:          http.StatusConflict,
	core.KindStudentNotFound:         http.StatusNotFound,
	core.KindStudentNotInBoard:       http.StatusConflict,
	core.KindPhotoNotFound:           http.StatusNotFound,
	core.KindPhotoUploadFailed:       http.StatusBadGateway,
	core.KindAuthenticationFailed:    http.StatusBadRequest,
	core.KindInsufficientPermissions: http.StatusForbidden,
	core.KindDataCorruption:          http.StatusInternalServerError,
	core.KindNetworkError:            http.StatusServiceUnavailable,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows
// how to handle domain and validation errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			// KindOf never leaks store-specific errors: anything
			// unclassified comes back as a network error.
			code = kindStatus[core.KindOf(err)]
			if code == 0 {
				code = http.StatusInternalServerError
			}
			message = err.Error()
			if code >= http.StatusInternalServerError {
				message = http.StatusText(code)
				logger.Error(http.StatusText(code), err)
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
