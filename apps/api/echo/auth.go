package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/student"
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"

	contextClaimsKey = "claims"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

func GetStudentClaims(conf *core.Config, s student.Student) *Claims {
	return newClaims(conf, s.ID, s.DisplayName, RoleStudent)
}

func GetTeacherClaims(conf *core.Config, teacherID, name string) *Claims {
	return newClaims(conf, teacherID, name, RoleTeacher)
}

func newClaims(conf *core.Config, subject, name, role string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: name,
		Role: role,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(conf.SecretKey))
	return token, errors.Wrap(err, "signing token")
}

func parseToken(conf *core.Config, tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// teacherAuthMiddleware enforces bearer JWT tokens carrying the teacher role.
func teacherAuthMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			authz := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				return errMissingToken
			}
			claims, err := parseToken(conf, strings.TrimSpace(authz[len("bearer "):]))
			if err != nil {
				return errInvalidToken
			}
			if claims.Role != RoleTeacher {
				return errHttpForbidden
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return claims, nil
	}
	return nil, errors.New("claims not found in echo.Context")
}

var (
	errMissingToken = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
)
