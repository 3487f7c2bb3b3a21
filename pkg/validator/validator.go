package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

const (
	choiceTag   = "choice"
	decimalsTag = "decimals"
)

// Validator provides validation functionality
type Validator interface {
	Validate(obj interface{}) error
}

// RuleChecker is implemented by records that carry rules spanning
// several fields. It runs only once every field has passed.
type RuleChecker interface {
	ValidateRules() error
}

// ChoiceLookup reports whether code is a member of the named choice set.
type ChoiceLookup func(set, code string) bool

type validate struct {
	engine *validator.Validate
}

// New builds a validator that understands the `choice=<SET>` tag.
func New(lookup ChoiceLookup) Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())

	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := engine.RegisterValidation(choiceTag, func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		// blank means "not recorded"; required fields reject it separately
		if code == "" {
			return true
		}
		return lookup(fl.Param(), code)
	}); err != nil {
		panic(err)
	}

	if err := engine.RegisterValidation(decimalsTag, validDecimals); err != nil {
		panic(err)
	}

	return &validate{engine: engine}
}

// validDecimals rejects floats with more fractional digits than the column
// scale named by the tag parameter.
func validDecimals(fl validator.FieldLevel) bool {
	scale, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	field := fl.Field()
	if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
		return true
	}
	return decimalPlaces(field.Float()) <= scale
}

func decimalPlaces(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// Validate checks field constraints, then choice constraints, then
// cross-field rules, and reports the first class that fails.
func (v *validate) Validate(obj interface{}) error {
	if err := v.engine.Struct(obj); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewBadRequest("invalid record", err)
		}
		return translate(fieldErrs)
	}

	if rc, ok := obj.(RuleChecker); ok {
		return rc.ValidateRules()
	}
	return nil
}

func translate(errs validator.ValidationErrors) error {
	var choiceErr validator.FieldError
	for _, fe := range errs {
		if fe.Tag() == choiceTag {
			if choiceErr == nil {
				choiceErr = fe
			}
			continue
		}
		return apperrors.NewFieldConstraint(fe.Field(), describe(fe), nil)
	}
	return apperrors.NewChoiceConstraint(choiceErr.Field(), choiceErr.Param(), valueString(choiceErr.Value()))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", fe.Field(), fe.Param())
	case decimalsTag:
		return fmt.Sprintf("%s must have at most %s decimal places", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed the %s constraint", fe.Field(), fe.Tag())
}

func valueString(v interface{}) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprint(rv.Interface())
}
