package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Lifecycle status: 1 active, 0 paused / on hold, -1 deleted
	validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case 1, 0, -1:
			return true
		}
		return false
	})

	validate.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		d := fl.Field().String()
		return d == "up" || d == "down"
	})

	validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyPattern.MatchString(fl.Field().String())
	})

	// Transaction types: 101 reload, 102 credit, 11 survey completion
	validate.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case 101, 102, 11:
			return true
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "url":
			errors[field] = "Invalid URL format"
		case "status":
			errors[field] = "Invalid status. Must be 1 (active), 0 (paused) or -1 (deleted)"
		case "direction":
			errors[field] = "Invalid direction. Must be up or down"
		case "currency":
			errors[field] = "Currency must be a 3-letter uppercase code"
		case "txtype":
			errors[field] = "Invalid transaction type. Must be 101, 102 or 11"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
