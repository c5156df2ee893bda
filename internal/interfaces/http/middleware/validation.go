package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
)

// itemCodePattern accepts codes like "CAM-001" or "tent.4p_02"
var itemCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,49}$`)

// SetupValidator reports field names by their json/form tag and registers
// the money and item_code validators on gin's engine
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	RegisterValidators(v)
	return nil
}

// RegisterValidators installs the custom tags on v
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("item_code", validateItemCode)
}

// validateMoney rejects negative amounts. Scale is enforced when decoding.
func validateMoney(fl validator.FieldLevel) bool {
	m, ok := fl.Field().Interface().(valueobject.Money)
	return ok && !m.IsNegative()
}

func validateItemCode(fl validator.FieldLevel) bool {
	return itemCodePattern.MatchString(fl.Field().String())
}

// HandleValidationError answers a binding failure: field errors become a
// detailed 400, malformed bodies a plain one
func HandleValidationError(c *gin.Context, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		details := make([]dto.ValidationDetail, 0, len(fieldErrors))
		for _, e := range fieldErrors {
			details = append(details, dto.ValidationDetail{
				Field:   fieldPath(e),
				Message: validationMessage(e),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
		return
	}
	abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request: "+err.Error())
}

// fieldPath drops the struct name: "CreateItemRequest.code" -> "code"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " entries"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " entries"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "money":
		return "Must not be negative"
	case "item_code":
		return "Must start with a letter or digit and contain only letters, digits, '.', '_' or '-'"
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
