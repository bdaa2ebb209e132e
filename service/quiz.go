package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/store"
)

// QuestionRow is one question as typed into a teacher's spreadsheet.
// Options and Answer are comma-separated; answers are 1-based option numbers.
type QuestionRow struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Options  string `json:"options"`
	Answer   string `json:"answer"`
	Field    string `json:"field"`
}

type SaveQuizParams struct {
	Label string        `json:"label"`
	Rows  []QuestionRow `json:"rows"`
}

type AssignQuizParams struct {
	StudentIDs []string `json:"studentId"`
	QuizIDs    []string `json:"quizId"`
	// Time is the number of minutes allowed.
	Time int `json:"time"`
}

type QuizValidateStatus string

const (
	QuizValidateOK           QuizValidateStatus = "OK"
	QuizValidateNeedMoreWork QuizValidateStatus = "NEED_MORE_WORK"
)

// RowIssue explains why a spreadsheet row was rejected. Row is 1-based.
type RowIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// QuizValidateResponse is the outcome of saving a quiz. Quiz is set when the
// status is OK.
type QuizValidateResponse struct {
	Status  QuizValidateStatus `json:"status"`
	Content []RowIssue         `json:"content"`
	Quiz    *altarf.Quiz       `json:"quiz,omitempty"`
}

// QuizService lets altarf teachers save quizzes and assign them to students.
type QuizService struct {
	store     *store.Store
	users     *AltarfUserService
	validator Validator
	logger    *slog.Logger
}

func NewQuizService(s *store.Store, users *AltarfUserService, v Validator, logger *slog.Logger) *QuizService {
	if v == nil {
		v = DefaultValidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{store: s, users: users, validator: v, logger: logger}
}

// Save checks every row and stores the quiz only when all rows are valid.
// Invalid rows are reported with status NEED_MORE_WORK, not as an error.
func (q *QuizService) Save(ctx context.Context, lineUserID string, params SaveQuizParams) (*QuizValidateResponse, error) {
	if err := q.validator.ValidateSaveQuizParams(params); err != nil {
		return nil, err
	}
	teacher, err := q.users.teacherByLineID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}

	issues := []RowIssue{}
	questions := make([]altarf.Question, 0, len(params.Rows))
	for i, row := range params.Rows {
		question, err := parseQuestion(row)
		if err != nil {
			issues = append(issues, RowIssue{Row: i + 1, Message: err.Error()})
			continue
		}
		questions = append(questions, question)
	}
	if len(issues) > 0 {
		return &QuizValidateResponse{Status: QuizValidateNeedMoreWork, Content: issues}, nil
	}

	quiz := altarf.Quiz{
		DbKey:     store.NewKey(altarf.EntityQuiz),
		Owner:     teacher.CreationID,
		Label:     params.Label,
		Questions: questions,
	}
	if err := store.PutItem(ctx, q.store, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	q.logger.Info("quiz saved", "key", quiz.Key().String(), "questions", len(questions))
	return &QuizValidateResponse{Status: QuizValidateOK, Content: issues, Quiz: &quiz}, nil
}

// Assign adds quizzes to the calling teacher's pairs with the given students.
// A quiz already assigned to a student is reset to TODO with the new time.
func (q *QuizService) Assign(ctx context.Context, lineUserID string, params AssignQuizParams) error {
	if err := q.validator.ValidateAssignQuizParams(params); err != nil {
		return err
	}
	teacher, err := q.users.teacherByLineID(ctx, lineUserID)
	if err != nil {
		return err
	}

	for _, quizID := range params.QuizIDs {
		quiz, err := getByID[altarf.Quiz](ctx, q.store, altarf.EntityQuiz, quizID)
		if err != nil {
			return fmt.Errorf("get quiz %s: %w", quizID, err)
		}
		if quiz == nil {
			return fmt.Errorf("quiz %s: %w", quizID, store.ErrNotFound)
		}
	}

	pairs, err := store.Query[altarf.TeacherStudentPair](ctx, q.store, altarf.EntityTeacherStudentPair,
		store.Filter{Attribute: "teacherId", Value: teacher.CreationID})
	if err != nil {
		return fmt.Errorf("list pairs: %w", err)
	}
	byStudent := make(map[string]altarf.TeacherStudentPair, len(pairs))
	for _, pair := range pairs {
		byStudent[pair.StudentID] = pair
	}

	for _, studentID := range params.StudentIDs {
		pair, ok := byStudent[studentID]
		if !ok {
			return fmt.Errorf("student %s is not paired with teacher %s: %w", studentID, teacher.CreationID, store.ErrNotFound)
		}
		pair.Quizes = assignQuizzes(pair.Quizes, params.QuizIDs, params.Time)
		if err := store.PutItem(ctx, q.store, pair); err != nil {
			return fmt.Errorf("assign to %s: %w", studentID, err)
		}
	}

	q.logger.Info("quizzes assigned",
		"teacher", teacher.CreationID,
		"students", len(params.StudentIDs),
		"quizzes", len(params.QuizIDs),
	)
	return nil
}

func assignQuizzes(current []altarf.AssignedQuiz, quizIDs []string, minutes int) []altarf.AssignedQuiz {
	out := append([]altarf.AssignedQuiz(nil), current...)
	for _, id := range quizIDs {
		assigned := altarf.AssignedQuiz{QuizID: id, Status: altarf.QuizStatusTodo, Time: minutes}
		replaced := false
		for i := range out {
			if out[i].QuizID == id {
				out[i] = assigned
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, assigned)
		}
	}
	return out
}
