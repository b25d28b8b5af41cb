package statement

import (
	"reflect"
	"strings"

	iErrors "github.com/GonzaloRizzo/beancount-itau-importer/errors"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct checks v's `validate` tags, collecting one error located at each invalid field
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var errs iErrors.Errors
	for _, fieldErr := range fieldErrs {
		errs.At(fieldErr.Field(), errors.Errorf("must be %s", strings.TrimSpace(fieldErr.Tag()+" "+fieldErr.Param())))
	}
	return errs.Err()
}
