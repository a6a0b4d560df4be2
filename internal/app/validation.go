package app

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/model"
)

const bcryptMaxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// Tag sets run through validator.Var; the first failing tag wins and its
// message comes from the matching entry in the rule.
type rule struct {
	tags     string
	messages map[string]string
}

var (
	usernameRule = rule{
		tags: "required,min=3,max=30,username",
		messages: map[string]string{
			"username": "Username can only contain letters, numbers, and underscores",
			"*":        "Username must be between 3 and 30 characters",
		},
	}
	emailRule = rule{
		tags:     "required,max=254,email",
		messages: map[string]string{"*": "Please provide a valid email"},
	}
	passwordRule = rule{
		tags:     "min=6",
		messages: map[string]string{"*": "Password must be at least 6 characters long"},
	}
	loginPasswordRule = rule{
		tags:     "required",
		messages: map[string]string{"*": "Password is required"},
	}
	statusRule = rule{
		tags:     "taskstatus",
		messages: map[string]string{"*": "Status must be " + statusList()},
	}
)

func textRule(label string, max int, requiredMsg string) rule {
	return rule{
		tags: "required,max=" + strconv.Itoa(max),
		messages: map[string]string{
			"required": requiredMsg,
			"max":      label + " cannot exceed " + strconv.Itoa(max) + " characters",
		},
	}
}

var (
	titleCreateRule       = textRule("Title", 100, "Title is required")
	titleUpdateRule       = textRule("Title", 100, "Title cannot be empty")
	descriptionCreateRule = textRule("Description", 500, "Description is required")
	descriptionUpdateRule = textRule("Description", 500, "Description cannot be empty")
)

type fieldChecker struct {
	fields []FieldError
}

func (c *fieldChecker) check(field, value string, r rule) {
	err := validate.Var(value, r.tags)
	if err == nil {
		return
	}

	msg := r.messages["*"]
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if m, ok := r.messages[verrs[0].Tag()]; ok {
			msg = m
		}
	}
	c.add(field, msg)
}

func (c *fieldChecker) add(field, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

func (c *fieldChecker) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// statusList renders the statuses as "a, b, or c".
func statusList() string {
	names := make([]string, len(model.TaskStatuses))
	for i, st := range model.TaskStatuses {
		names[i] = string(st)
	}
	last := len(names) - 1
	return strings.Join(names[:last], ", ") + ", or " + names[last]
}
