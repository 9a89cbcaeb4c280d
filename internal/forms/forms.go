// Package forms validates user input before it reaches a store or the
// school API. A failed validation yields one message per field and no
// request is made.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	notBlankTag = "notblank"
	emailTag    = "emailaddr"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return emailRegexp.MatchString(fl.Field().String())
	})
}

// Errors maps a field's JSON name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// Validate checks form, a pointer to one of the form structs. It returns
// nil or an Errors value.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(t, fe)
	}
	return out
}

// FieldErrors returns the per-field messages of err, or nil.
func FieldErrors(err error) Errors {
	var fe Errors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

func message(t reflect.Type, fe validator.FieldError) string {
	label := fe.Field()
	if sf, ok := t.FieldByName(fe.StructField()); ok {
		if l := sf.Tag.Get("label"); l != "" {
			label = l
		}
	}
	switch fe.Tag() {
	case "required", notBlankTag:
		return label + " is required"
	case emailTag:
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "number":
		return label + " must be a non-negative number"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	default:
		return fe.Translate(translator)
	}
}

// Login signs in to a classnotes account.
type Login struct {
	Email    string `json:"email" label:"Email" validate:"required,emailaddr"`
	Password string `json:"password" label:"Password" validate:"required,min=6"`
}

// SchoolLogin signs in to the school backend, which accepts shorter passwords.
type SchoolLogin struct {
	Email    string `json:"email" label:"Email" validate:"required,emailaddr"`
	Password string `json:"password" label:"Password" validate:"required,min=3"`
}

type Register struct {
	Username       string `json:"username" label:"Username" validate:"notblank"`
	Email          string `json:"email" label:"Email" validate:"required,emailaddr"`
	Password       string `json:"password" label:"Password" validate:"required,min=6"`
	RepeatPassword string `json:"repeatPassword" label:"Repeat password" validate:"eqfield=Password"`
}

// Class takes the student count as typed text.
type Class struct {
	Name         string `json:"nomClass" label:"Class name" validate:"notblank"`
	StudentCount string `json:"nbreEtud" label:"Number of students" validate:"required,number"`
}

// Count returns the parsed student count. Call it after Validate.
func (c Class) Count() int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.StudentCount))
	return n
}

type Student struct {
	LastName  string `json:"nom" label:"Last name" validate:"notblank"`
	FirstName string `json:"prenom" label:"First name" validate:"notblank"`
	BirthDate string `json:"dateNais" label:"Birth date" validate:"required,datetime=2006-01-02"`
}

type Subject struct {
	Title       string `json:"intMat" label:"Title" validate:"notblank"`
	Description string `json:"description" label:"Description" validate:"notblank"`
}

type Group struct {
	Name string `json:"name" label:"Group name" validate:"notblank"`
}

type Note struct {
	Title   string `json:"title" label:"Title" validate:"notblank"`
	Content string `json:"content" label:"Content" validate:"notblank"`
}

type Message struct {
	Content string `json:"content" label:"Message" validate:"notblank"`
}
