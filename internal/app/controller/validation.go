package controller

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// registration only fails for an empty tag
		_ = v.RegisterValidation("notblank", notBlank)
	}
}

// notBlank rejects strings made only of whitespace. required alone lets "  " through.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
