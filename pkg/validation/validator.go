package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MinCarYear is the oldest model year accepted for a listing
const MinCarYear = 1950

var (
	validate *validator.Validate
	once     sync.Once

	phPhoneRegex = regexp.MustCompile(`^(09|\+639)\d{9}$`)
	vinRegex     = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

// Get returns the shared validator with the marketplace rules registered
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		registerCustomValidators(validate)
	})
	return validate
}

// RegisterGinValidators makes the marketplace rules available to gin `binding` tags
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	registerCustomValidators(v)
	return nil
}

// ValidateStruct validates s and converts failures into a ValidationError
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewValidationError(verrs)
	}
	return err
}

func registerCustomValidators(v *validator.Validate) {
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("car_year", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= MinCarYear && year <= time.Now().Year()+1
	})
	_ = v.RegisterValidation("fuel_type", oneOf("gasoline", "diesel", "hybrid", "electric", "lpg"))
	_ = v.RegisterValidation("transmission", oneOf("manual", "automatic", "cvt", "dct"))
	_ = v.RegisterValidation("user_role", oneOf("buyer", "seller", "dealer"))
	_ = v.RegisterValidation("ph_phone", func(fl validator.FieldLevel) bool {
		return phPhoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("vin", func(fl validator.FieldLevel) bool {
		return vinRegex.MatchString(strings.ToUpper(fl.Field().String()))
	})
}

func oneOf(values ...string) validator.Func {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}
