package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/auth"
	"github.com/monocle-dev/taskhub/internal/logutils"
	"github.com/monocle-dev/taskhub/internal/middleware"
	"github.com/monocle-dev/taskhub/internal/services"
)

type AppInfo struct {
	Name    string
	Version string
}

// Handler serves the REST surface on top of the services.
type Handler struct {
	App         AppInfo
	Users       *services.UserService
	Auth        *services.AuthService
	Projects    *services.ProjectService
	Memberships *services.MembershipService
	Tasks       *services.TaskService
	Comments    *services.CommentService
	Files       *services.FileService
}

var personName = regexp.MustCompile(`^[a-zA-Z0-9 ]*$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the "password" and "personname" tags to gin's validator and
// reports json field names in validation errors.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return auth.CheckPasswordStrength(fl.Field().String()) == nil
		}); err != nil {
			registerErr = fmt.Errorf("register password validator: %w", err)
			return
		}
		if err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personName.MatchString(fl.Field().String())
		}); err != nil {
			registerErr = fmt.Errorf("register personname validator: %w", err)
		}
	})
	return registerErr
}

func respondError(ctx *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logutils.Log.WithError(err).WithFields(logutils.Fields{
			"request_id": middleware.GetRequestID(ctx),
			"path":       ctx.FullPath(),
		}).Error("request failed")
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError turns binding failures into a 400 naming the offending fields.
func respondBindError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, describeFieldError(fe))
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(messages, "; ")})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "personname":
		return fmt.Sprintf("%s may only contain letters, digits and spaces", fe.Field())
	case "password":
		if s, ok := fe.Value().(string); ok {
			if err := auth.CheckPasswordStrength(s); err != nil {
				return err.Error()
			}
		}
		return "password is too weak"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
