package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a validator with the custom rules this service needs.
func New() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("audioext", validAudioExt)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validAudioExt accepts filenames with a supported audio extension.
func validAudioExt(fl validator.FieldLevel) bool {
	ext := strings.ToLower(filepath.Ext(fl.Field().String()))
	switch ext {
	case ".mp3", ".wav", ".m4a", ".mp4":
		return true
	}
	return false
}
