package utils

import (
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
)

// RegisterValidators installs the enum validators used in request binding
// tags: taskstatus, taskpriority, projectstatus and role.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	rules := map[string][]string{
		"taskstatus":    models.TaskStatuses,
		"taskpriority":  models.TaskPriorities,
		"projectstatus": models.ProjectStatuses,
		"role":          permission.Roles,
	}
	for tag, allowed := range rules {
		allowed := allowed
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return contains(allowed, fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ValidateEmail checks the syntax of an e-mail address.
func ValidateEmail(email string) error {
	return checkmail.ValidateFormat(strings.TrimSpace(email))
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatBindError turns validator failures into a short readable message.
func FormatBindError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" must be at least "+fe.Param()+unit(fe))
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+unit(fe))
		case "taskstatus":
			msgs = append(msgs, field+" must be one of "+strings.Join(models.TaskStatuses, ", "))
		case "taskpriority":
			msgs = append(msgs, field+" must be one of "+strings.Join(models.TaskPriorities, ", "))
		case "projectstatus":
			msgs = append(msgs, field+" must be one of "+strings.Join(models.ProjectStatuses, ", "))
		case "role":
			msgs = append(msgs, field+" must be one of "+strings.Join(permission.Roles, ", "))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

func unit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
