// Package validator adapts go-playground/validator to echo and converts its
// failures into the domain validation error variants.
package validator

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	domainerrors "sba/internal/domain/errors"
	"sba/internal/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// Param is a single handler parameter checked by ValidateParams.
type Param struct {
	Name  string
	Value any
	Tag   string
}

// New creates a validator that names fields by their json tag and renders
// violation messages in English.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, errors.Wrap(err, "register default translations")
	}

	return &Validator{
		validate: validate,
		trans:    trans,
	}, nil
}

// Validate checks the struct constraints of i. Constraint failures are
// returned as *domainerrors.ValidationError; anything else (nil or non-struct
// input) is returned as a plain error.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate struct")
	}

	result := &domainerrors.ValidationError{}
	for _, fe := range verrs {
		message := fe.Translate(v.trans)
		if fe.Field() == "" {
			result.ObjectErrors = append(result.ObjectErrors, domainerrors.ObjectError{
				Object:  objectName(fe.StructNamespace()),
				Message: message,
			})

			continue
		}
		result.FieldErrors = append(result.FieldErrors, domainerrors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message,
		})
	}

	return result
}

// ValidateParams checks loose handler parameters, such as path or query
// values, against their tags. Failures are returned as a
// *domainerrors.ConstraintViolationError rooted at root's type with property
// paths of the form "<method>.<param>".
func (v *Validator) ValidateParams(root any, method string, params ...Param) error {
	rootType := reflect.TypeOf(root)
	for rootType != nil && rootType.Kind() == reflect.Pointer {
		rootType = rootType.Elem()
	}
	rootName := domainerrors.TypeName(rootType)

	var violations []domainerrors.ConstraintViolation
	for _, p := range params {
		err := v.validate.VarWithKey(p.Name, p.Value, p.Tag)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrapf(err, "validate parameter %s", p.Name)
		}
		for _, fe := range verrs {
			violations = append(violations, domainerrors.ConstraintViolation{
				RootType:     rootName,
				PropertyPath: method + "." + p.Name,
				Message:      fe.Translate(v.trans),
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}

	return &domainerrors.ConstraintViolationError{Violations: violations}
}

// RegisterObjectRule adds a cross-field rule for the given struct types. When
// rule returns false an object error carrying message is reported for the
// whole struct.
func (v *Validator) RegisterObjectRule(tag, message string, rule func(obj any) bool, types ...any) error {
	err := v.validate.RegisterTranslation(tag, v.trans,
		func(trans ut.Translator) error {
			return trans.Add(tag, message, true)
		},
		func(trans ut.Translator, fe validator.FieldError) string {
			text, err := trans.T(fe.Tag())
			if err != nil {
				return message
			}

			return text
		},
	)
	if err != nil {
		return errors.Wrapf(err, "register translation for %s", tag)
	}

	v.validate.RegisterStructValidation(func(sl validator.StructLevel) {
		if !rule(sl.Current().Interface()) {
			sl.ReportError(nil, "", "", tag, "")
		}
	}, types...)

	return nil
}

// fieldPath drops the root struct from a namespace such as
// "Order.items[0].name", leaving the property path "items[0].name".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}

	return namespace
}

// objectName turns a struct namespace such as "SignupRequest." into the
// lowerCamel object name "signupRequest".
func objectName(namespace string) string {
	namespace = strings.TrimSuffix(namespace, ".")
	if i := strings.LastIndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}

	r, size := utf8.DecodeRuneInString(namespace)
	if r == utf8.RuneError {
		return namespace
	}

	return string(unicode.ToLower(r)) + namespace[size:]
}
