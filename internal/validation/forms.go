package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"quiz-admin-console/internal/domain"
)

// LoginForm is the credential form of the console sign-in page.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeForm is the settings page form.
type PasswordChangeForm struct {
	CurrentPassword string `json:"currentPassword" validate:"min=6"`
	NewPassword     string `json:"newPassword" validate:"min=8,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"min=8,eqfield=NewPassword"`
}

// ForgotPasswordForm starts the reset flow.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPForm checks the code sent by e-mail.
type VerifyOTPForm struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"len=6,numeric"`
}

// ResetPasswordForm finishes the reset flow with a verified code.
type ResetPasswordForm struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"len=6,numeric"`
	NewPassword     string `json:"newPassword" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

var messages = map[string]map[string]string{
	"quizCategory":            {"required": "Category is required"},
	"quizQuestion":            {"required": "Question is required"},
	"quizPoint":               {"gte": "Point must be 0 or more"},
	"quizAnswer":              {"required": "Answer is required"},
	"quizzes":                 {"min": "At least one question is required"},
	"quizCategoryName":        {"min": "Name is required"},
	"quizCategoryState":       {"oneof": "Status must be Active or Inactive"},
	"quizTotalTime":           {"gte": "Time must be 0 or more"},
	"quizCategoryDetails":     {"min": "Details are required"},
	"subscriptionPlanName":    {"required": "Plan name is required"},
	"subscriptionDetailsList": {"min": "At least one detail is required", "required": "Detail cannot be empty"},
	"text":                    {"required": "Joke text is required"},
	"jokeAnswer":              {"required": "Joke answer is required"},
	"email":                   {"required": "Email is required", "email": "Invalid email address"},
	"password":                {"required": "Password is required"},
	"currentPassword":         {"min": "Current password is required"},
	"newPassword":             {"min": "New password must be at least 8 characters", "nefield": "New password must be different from current password"},
	"confirmPassword":         {"min": "Confirm password must be at least 8 characters", "eqfield": "Passwords don't match"},
	"otp":                     {"len": "Please enter full OTP", "numeric": "OTP must contain digits only"},
}

var optionMessages = map[string]string{
	"min":      "At least 2 options are required",
	"max":      "Maximum 6 options are allowed",
	"required": "Option cannot be empty",
}

// Validator checks console forms before anything reaches the backend.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Quiz validates a single question form.
func (val *Validator) Quiz(in domain.QuizInput) error {
	fields := val.fieldErrors(val.v.Struct(in))
	answerInOptions(fields, "quizAnswer", in.Answer, in.Options)
	return asError(fields)
}

// BulkQuiz validates the multi-question create form.
func (val *Validator) BulkQuiz(in domain.BulkQuizInput) error {
	fields := val.fieldErrors(val.v.Struct(in))
	for i, q := range in.Quizzes {
		answerInOptions(fields, fmt.Sprintf("quizzes[%d].quizAnswer", i), q.Answer, q.Options)
	}
	return asError(fields)
}

// Category validates the category form. An empty state defaults to Active.
func (val *Validator) Category(in *domain.CategoryInput) error {
	if in.State == "" {
		in.State = "Active"
	}
	return asError(val.fieldErrors(val.v.Struct(in)))
}

// SubscriptionPlan validates the plan form.
func (val *Validator) SubscriptionPlan(in domain.SubscriptionPlanInput) error {
	fields := val.fieldErrors(val.v.Struct(in))
	if in.MonthlyPrice.IsNegative() {
		fields["subscriptionMonthlyPlanPrice"] = "Price must be 0 or more"
	}
	if in.YearlyPrice.IsNegative() {
		fields["subscriptionYearlyPlanPrice"] = "Price must be 0 or more"
	}
	return asError(fields)
}

// Joke validates the joke form; creating requires an image.
func (val *Validator) Joke(in domain.JokeInput, creating bool) error {
	fields := val.fieldErrors(val.v.Struct(in))
	if creating && (in.Image == nil || len(in.Image.Data) == 0) {
		fields["jokeImage"] = "Joke image is required"
	}
	return asError(fields)
}

// Form validates any of the account forms declared in this package.
func (val *Validator) Form(form any) error {
	return asError(val.fieldErrors(val.v.Struct(form)))
}

func answerInOptions(fields map[string]string, key, answer string, options []string) {
	if answer == "" {
		return
	}
	if _, taken := fields[key]; taken {
		return
	}
	for _, opt := range options {
		if opt == answer {
			return
		}
	}
	fields[key] = "Correct answer must match one of the options"
}

func (val *Validator) fieldErrors(err error) map[string]string {
	fields := map[string]string{}
	if err == nil {
		return fields
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		if _, taken := fields[key]; taken {
			continue
		}
		fields[key] = message(fe)
	}
	return fields
}

// fieldPath drops the root struct name: "BulkQuizInput.quizzes[0].quizAnswer" -> "quizzes[0].quizAnswer".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	if strings.HasPrefix(name, "quizOptions") {
		if msg, ok := optionMessages[fe.Tag()]; ok {
			return msg
		}
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if msg, ok := messages[name][fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s", name, fe.Tag())
}

func asError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
