package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/model/sadalsuud"
)

// ErrInvalidInput is matched by every *ValidationError.
var ErrInvalidInput = errors.New("constellation: invalid input")

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validator checks service inputs before they reach the store.
type Validator interface {
	ValidateUser(u sadalsuud.User) error
	ValidatePair(teacherID, studentID string) error
	ValidateSaveQuizParams(params SaveQuizParams) error
	ValidateAssignQuizParams(params AssignQuizParams) error
}

// DefaultValidator enforces required fields.
type DefaultValidator struct{}

var _ Validator = DefaultValidator{}

func (DefaultValidator) ValidateUser(u sadalsuud.User) error {
	if u.LineUserID == "" {
		return invalid("lineUserId", "required")
	}
	if u.Name == "" {
		return invalid("name", "required")
	}
	switch u.Role {
	case sadalsuud.RoleStarRain, sadalsuud.RolePlanet:
	default:
		return invalid("role", "unknown role %q", u.Role)
	}
	if u.JoinSession < 0 {
		return invalid("joinSession", "must not be negative")
	}
	return nil
}

func (DefaultValidator) ValidatePair(teacherID, studentID string) error {
	if teacherID == "" {
		return invalid("teacherId", "required")
	}
	if studentID == "" {
		return invalid("studentId", "required")
	}
	if teacherID == studentID {
		return invalid("studentId", "must differ from teacherId")
	}
	return nil
}

func (DefaultValidator) ValidateSaveQuizParams(params SaveQuizParams) error {
	if strings.TrimSpace(params.Label) == "" {
		return invalid("label", "required")
	}
	if len(params.Rows) == 0 {
		return invalid("rows", "at least one question required")
	}
	return nil
}

func (DefaultValidator) ValidateAssignQuizParams(params AssignQuizParams) error {
	if len(params.StudentIDs) == 0 {
		return invalid("studentId", "at least one student required")
	}
	if len(params.QuizIDs) == 0 {
		return invalid("quizId", "at least one quiz required")
	}
	if params.Time <= 0 {
		return invalid("time", "must be positive")
	}
	return nil
}

// parseQuestion converts one sheet row into a question, or explains why it can't.
func parseQuestion(row QuestionRow) (altarf.Question, error) {
	if row == (QuestionRow{}) {
		return altarf.Question{}, errors.New("row is empty")
	}
	if strings.TrimSpace(row.Question) == "" {
		return altarf.Question{}, errors.New("question is empty")
	}

	q := altarf.Question{
		Question: row.Question,
		Type:     altarf.QuestionType(row.Type),
		Field:    row.Field,
	}

	switch q.Type {
	case altarf.QuestionTypeText:
		q.Answer = splitList(row.Answer)
		return q, nil
	case altarf.QuestionTypeSingle, altarf.QuestionTypeMultiple:
	default:
		return altarf.Question{}, fmt.Errorf("unknown question type %q", row.Type)
	}

	q.Options = splitList(row.Options)
	if len(q.Options) == 0 {
		return altarf.Question{}, errors.New("options are empty")
	}
	q.Answer = splitList(row.Answer)
	if len(q.Answer) == 0 {
		return altarf.Question{}, errors.New("answer is empty")
	}
	if q.Type == altarf.QuestionTypeSingle && len(q.Answer) != 1 {
		return altarf.Question{}, fmt.Errorf("single choice needs exactly one answer, got %d", len(q.Answer))
	}
	for _, a := range q.Answer {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 || n > len(q.Options) {
			return altarf.Question{}, fmt.Errorf("answer %q is not an option number between 1 and %d", a, len(q.Options))
		}
	}
	return q, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
