package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// dateonly accepts a plain ISO date or a full RFC 3339 timestamp, matching
// what parseDateParam understands.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
			_, ok := parseDateParam(fl.Field().String())
			return ok
		})
	}
}
