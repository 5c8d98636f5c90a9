package handlers

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/team-todo-api/internal/models"
)

// RegisterValidators adds the custom binding rules used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return v.RegisterValidation("todostatus", func(fl validator.FieldLevel) bool {
		return models.TodoStatus(fl.Field().Int()).Valid()
	})
}

// jsonFieldName names struct fields by their json key in validation errors.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
