package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jacentio/constellation/internal/idgen"
	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/store"
)

// PairService manages teacher-student pairs of altarf.
type PairService struct {
	store     *store.Store
	validator Validator
	logger    *slog.Logger
}

func NewPairService(s *store.Store, v Validator, logger *slog.Logger) *PairService {
	if v == nil {
		v = DefaultValidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PairService{store: s, validator: v, logger: logger}
}

// ListByTeacher returns every pair of a teacher.
func (p *PairService) ListByTeacher(ctx context.Context, teacherID string) ([]altarf.TeacherStudentPair, error) {
	return p.list(ctx, "teacherId", teacherID)
}

// ListByStudent returns every pair of a student.
func (p *PairService) ListByStudent(ctx context.Context, studentID string) ([]altarf.TeacherStudentPair, error) {
	return p.list(ctx, "studentId", studentID)
}

func (p *PairService) list(ctx context.Context, field, id string) ([]altarf.TeacherStudentPair, error) {
	if id == "" {
		return nil, invalid(field, "required")
	}
	return store.Query[altarf.TeacherStudentPair](ctx, p.store, altarf.EntityTeacherStudentPair,
		store.Filter{Attribute: field, Value: id})
}

// Pair links a teacher and a student. The pair id is derived from both ids,
// so pairing the same two users again returns the existing pair untouched.
func (p *PairService) Pair(ctx context.Context, teacherID, studentID string) (*altarf.TeacherStudentPair, error) {
	if err := p.validator.ValidatePair(teacherID, studentID); err != nil {
		return nil, err
	}

	key := store.DbKey{
		ProjectEntity: altarf.EntityTeacherStudentPair,
		CreationID:    idgen.Derive(teacherID, studentID),
	}
	existing, err := store.GetItem[altarf.TeacherStudentPair](ctx, p.store, key)
	if err != nil {
		return nil, fmt.Errorf("get pair: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	pair := altarf.TeacherStudentPair{
		DbKey:     key,
		TeacherID: teacherID,
		StudentID: studentID,
		Quizes:    []altarf.AssignedQuiz{},
	}
	if err := store.PutItem(ctx, p.store, pair); err != nil {
		return nil, fmt.Errorf("put pair: %w", err)
	}

	p.logger.Info("pair created", "key", key.String(), "teacherId", teacherID, "studentId", studentID)
	return &pair, nil
}
