package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   *validator.Validate
	phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
}

// Struct validates a struct using its validate tags
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Message turns a validation error into a readable message for API clients
func Message(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "phone":
			parts = append(parts, field+" must be a valid phone number")
		case "min":
			parts = append(parts, field+" must be at least "+fe.Param()+" characters")
		case "max":
			parts = append(parts, field+" must be at most "+fe.Param()+" characters")
		case "gt":
			parts = append(parts, field+" must be greater than "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
