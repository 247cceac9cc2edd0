package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"classifieds-api/internal/domain"
)

var (
	once sync.Once
	v    *validator.Validate

	rePincode = regexp.MustCompile(`^\d{6}$`)
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// 字段名取 json/form tag，保持与请求体一致
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return rePincode.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return domain.ValidCategory(fl.Field().String())
		})
		_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
			return domain.ValidCondition(fl.Field().String())
		})
	})
	return v
}

// Struct 校验失败返回 KindValidation 的 *domain.Error
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make([]domain.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return domain.Validation("Validation failed", fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "eqfield":
		return "Passwords don't match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "pincode":
		return "Pincode must be a valid 6-digit number"
	case "category":
		return "Please select a valid category"
	case "condition":
		return "Please select a valid condition"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// TrimPtr 去除首尾空白；nil 保持 nil
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
