package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/middleware"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

func init() {
	// report json field names in validation messages
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// bindJSON binds the body and converts binding failures to a ValidationError
func bindJSON(ctx *gin.Context, obj interface{}) error {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return bbmmodels.NewValidationError(fe.Field(), describe(fe))
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return bbmmodels.NewValidationError("", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return bbmmodels.NewValidationError("", "request body is not valid JSON")
	case errors.As(err, &typeErr):
		return bbmmodels.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.Kind()))
	}
	return bbmmodels.NewValidationError("", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// respondError maps service errors onto HTTP responses
func respondError(ctx *gin.Context, log *logger.Logger, err error) {
	var re *bbmmodels.RemoteError
	switch {
	case errors.Is(err, bbmmodels.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, bbmmodels.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.As(err, &re):
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"status":  "error",
			"message": re.UserMessage(),
			"error":   err.Error(),
		})
	default:
		log.WithRequestID(middleware.GetRequestID(ctx)).Logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Unhandled error")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
	_ = ctx.Error(err)
}
