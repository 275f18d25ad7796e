package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// hourLayout is how opening hours are written, e.g. "09:30 PM".
const hourLayout = "03:04 PM"

var allowedImageExt = []string{".png", ".jpg", ".jpeg"}

// HourChoices lists the selectable opening-hour values on a 30 minute grid.
var HourChoices = func() []string {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, 48)
	for i := 0; i < 48; i++ {
		out = append(out, base.Add(time.Duration(i)*30*time.Minute).Format(hourLayout))
	}
	return out
}()

var validatorsOnce sync.Once

// registerValidators adds the custom tags to gin's validator and makes field
// errors report the json name of the field.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("hour", func(fl validator.FieldLevel) bool {
			return isHourChoice(fl.Field().String())
		})
	})
}

func isHourChoice(s string) bool {
	for _, h := range HourChoices {
		if h == s {
			return true
		}
	}
	return false
}

// fieldMessage renders one validator failure the way a form would show it.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Password does not match."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "oneof":
		return "Select a valid choice."
	case "hour":
		return "Select a valid time."
	case "numeric":
		return "Enter a number."
	default:
		return "Enter a valid value."
	}
}

// bindError writes a 400 for a failed ShouldBind. Validator failures become
// per-field messages; anything else (bad JSON, wrong types) is reported as is.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fieldError writes a 400 carrying a single field message.
func fieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{field: msg}})
}

// validImageName reports whether a file name has an allowed image extension.
func validImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range allowedImageExt {
		if ext == allowed {
			return true
		}
	}
	return false
}

func imageExtMessage() string {
	return "Unsupported file extension. Allowed extension: " + strings.Join(allowedImageExt, ", ")
}
