package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	msgRequired    = "This field is required."
	msgUniqueTitle = "This title already exists."
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tags of a request DTO and converts failures into a
// *ValidationError keyed by JSON field name.
func Validate(req interface{}) error {
	err := structValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate struct")
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		verr.Add(field, tagMessage(fe))
	}
	return verr.OrNil()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return "This field may not be blank."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	default:
		return "Invalid value."
	}
}

func ParseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fieldError(field, msgRequired)
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fieldError(field, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return t, nil
}

// ParseClock normalizes "HH:MM" and "HH:MM:SS" to "HH:MM:SS".
func ParseClock(field, value string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	if value == "" {
		return "", fieldError(field, msgRequired)
	}
	return "", fieldError(field, "Time has wrong format. Use one of these formats instead: hh:mm[:ss].")
}

func ParseDateTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fieldError(field, msgRequired)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", DateLayout} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fieldError(field, "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss][+HH:MM|-HH:MM|Z].")
}

// checkUniqueTitle fails when another row of model owned by userID already
// carries title. excludeID skips the row being updated.
func checkUniqueTitle(ctx context.Context, conn *gorm.DB, model interface{}, userID uint64, title string, excludeID uint64) error {
	var count int64
	q := conn.WithContext(ctx).Model(model).Where("user_id = ? AND title = ?", userID, title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "count titles")
	}
	if count > 0 {
		return fieldError("title", msgUniqueTitle)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
