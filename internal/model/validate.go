package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(activityDates, Activity{})
	})
	return validate
}

// activityDates enforces start <= end when both are set.
func activityDates(sl validator.StructLevel) {
	a := sl.Current().Interface().(Activity)
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		sl.ReportError(a.EndDate, "EndDate", "EndDate", "gtefield", "StartDate")
	}
}

// Validate checks the struct tags of an entity and returns a single error
// describing every failed field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
