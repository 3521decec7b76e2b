package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

func init() {
	// Report binding failures under the JSON key the client sent.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// BindJSON decodes the request body into obj and runs its binding tags.
// On failure it answers 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondBindError(c, err)
		return false
	}
	return true
}

// RespondBindError answers a failed ShouldBind call.
func RespondBindError(c *gin.Context, err error) {
	RespondWithError(c, BindError(err), "")
}

// BindError converts a ShouldBind failure into an error RespondWithError
// understands. Tag failures and type mismatches name the offending field;
// anything else is a malformed body.
func BindError(err error) error {
	if fe, ok := FirstFieldError(err); ok {
		return &validation.Error{Field: fe.Field(), Message: FieldErrorMessage(fe)}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &validation.Error{Field: typeErr.Field, Message: "Incorrect type."}
	}
	return apierrors.BadRequest("Invalid request body")
}

// FirstFieldError returns the first tag failure carried by err.
func FirstFieldError(err error) (validator.FieldError, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0], true
	}
	return nil, false
}

// FieldErrorMessage renders a tag failure in the API's field message style.
func FieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters)", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address"
	case "url":
		return "Enter a valid URL."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(indirect(fe.Value())))
	}
	return "Invalid value."
}

func indirect(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
