// Package altarf defines the entities of the LINE-bot quiz and classroom tool.
package altarf

import (
	"errors"

	"github.com/jacentio/constellation/store"
)

// Partitions of the altarf project.
const (
	EntityUser               store.Entity = "altarf-user"
	EntityQuiz               store.Entity = "altarf-quiz"
	EntityTeacherStudentPair store.Entity = "altarf-teacherStudentPair"
)

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type QuizStatus string

const (
	QuizStatusTodo QuizStatus = "TODO"
	QuizStatusDone QuizStatus = "DONE"
)

type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "S"
	QuestionTypeMultiple QuestionType = "M"
	QuestionTypeText     QuestionType = "T"
)

// User is a teacher or student, linked to a LINE account.
type User struct {
	store.DbKey
	LineUserID    string `dynamodbav:"lineUserId" json:"lineUserId"`
	Name          string `dynamodbav:"name" json:"name"`
	Role          Role   `dynamodbav:"role" json:"role"`
	SpreadsheetID string `dynamodbav:"spreadsheetId,omitempty" json:"spreadsheetId,omitempty"`
	Classroom     string `dynamodbav:"classroom,omitempty" json:"classroom,omitempty"`
}

// Question is one question of a quiz.
type Question struct {
	Question string       `dynamodbav:"question" json:"question"`
	Type     QuestionType `dynamodbav:"type" json:"type"`
	Options  []string     `dynamodbav:"options,omitempty" json:"options,omitempty"`
	Answer   []string     `dynamodbav:"answer" json:"answer"`
	Field    string       `dynamodbav:"field,omitempty" json:"field,omitempty"`
}

// Quiz is a set of questions owned by a teacher.
type Quiz struct {
	store.DbKey
	Owner     string     `dynamodbav:"owner" json:"owner"`
	Label     string     `dynamodbav:"label" json:"label"`
	Questions []Question `dynamodbav:"questions" json:"questions"`
}

// AssignedQuiz records a quiz assigned to a student and its progress.
type AssignedQuiz struct {
	QuizID string     `dynamodbav:"quizId" json:"quizId"`
	Status QuizStatus `dynamodbav:"status" json:"status"`
	// Time is the number of minutes allowed.
	Time int `dynamodbav:"time" json:"time"`
}

// TeacherStudentPair links one teacher to one student.
type TeacherStudentPair struct {
	store.DbKey
	TeacherID string         `dynamodbav:"teacherId" json:"teacherId"`
	StudentID string         `dynamodbav:"studentId" json:"studentId"`
	Quizes    []AssignedQuiz `dynamodbav:"quizes" json:"quizes"`
}

// Register declares every altarf entity kind in r.
func Register(r *store.Registry) error {
	return errors.Join(
		store.RegisterEntity[User](r, EntityUser),
		store.RegisterPrimaryAttribute[User](r, store.AttrCreationID),
		store.RegisterRelatedAttributeMany[User](r, "lineUserId", EntityUser),

		store.RegisterEntity[Quiz](r, EntityQuiz),
		store.RegisterPrimaryAttribute[Quiz](r, store.AttrCreationID),
		store.RegisterRelatedAttributeOne[Quiz](r, "owner", EntityUser),

		store.RegisterEntity[TeacherStudentPair](r, EntityTeacherStudentPair),
		store.RegisterPrimaryAttribute[TeacherStudentPair](r, store.AttrCreationID),
		store.RegisterRelatedAttributeMany[TeacherStudentPair](r, "teacherId", EntityUser),
		store.RegisterRelatedAttributeMany[TeacherStudentPair](r, "studentId", EntityUser),
	)
}
