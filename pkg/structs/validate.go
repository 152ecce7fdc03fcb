package structs

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/voidshard/era5d/pkg/errors"
)

var (
	cdsIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("cds_id", cdsIDValidator)
		v.RegisterStructValidation(dateOrderValidator, RetrievalRequest{})
		validate = v
	})
	return validate
}

func cdsIDValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return cdsIDRegex.MatchString(val)
}

func dateOrderValidator(sl validator.StructLevel) {
	r := sl.Current().Interface().(RetrievalRequest)
	start, err := time.Parse(time.DateOnly, r.DateStart)
	if err != nil {
		return // reported by the field rule
	}
	end, err := time.Parse(time.DateOnly, r.DateEnd)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(r.DateEnd, "DateEnd", "dateEnd", "date_order", "")
	}
}

// Validate checks required fields are present (in a fixed order, reporting the
// first missing one) and then that every field is well formed.
func (r *RetrievalRequest) Validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"dataset", r.Dataset == ""},
		{"variables", r.Variables == nil},
		{"dateStart", r.DateStart == ""},
		{"dateEnd", r.DateEnd == ""},
		{"area", r.Area == nil},
		{"format", r.Format == ""},
		{"productType", r.ProductType == ""},
	}
	for _, f := range required {
		if f.missing {
			return errors.Missing(f.name)
		}
	}

	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	msgs := []string{}
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", errors.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := jsonName(fe.StructNamespace())
	switch fe.Tag() {
	case "date_order":
		return "dateEnd must not be before dateStart"
	case "datetime":
		return fmt.Sprintf("invalid %s: %v (expected %s)", field, fe.Value(), fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid %s: %v (expected one of %s)", field, fe.Value(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("invalid %s: must be greater than %s", field, strings.ToLower(fe.Param()))
	case "min":
		return fmt.Sprintf("invalid %s: at least %s required", field, fe.Param())
	default:
		return fmt.Sprintf("invalid %s: %v", field, fe.Value())
	}
}

// jsonName turns "RetrievalRequest.Area.North" into "area.north"
func jsonName(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}
