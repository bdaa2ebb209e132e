// Package api exposes the services over HTTP for API Gateway proxy integration.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jacentio/constellation/lambdaio"
	"github.com/jacentio/constellation/model/sadalsuud"
	"github.com/jacentio/constellation/service"
)

// Services bundles the services served by the API.
type Services struct {
	Users       *service.UserService
	AltarfUsers *service.AltarfUserService
	Pairs       *service.PairService
	Quizzes     *service.QuizService
}

// Server routes HTTP requests to services and shapes their responses.
type Server struct {
	svc    Services
	logger *slog.Logger
	mux    *http.ServeMux
}

func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /sadalsuud/users", s.getAllUsers)
	s.mux.HandleFunc("POST /sadalsuud/users", s.addUser)
	s.mux.HandleFunc("GET /sadalsuud/users/{id}", s.getUser)
	s.mux.HandleFunc("GET /sadalsuud/line-users/{lineUserId}", s.getUserByLineID)

	s.mux.HandleFunc("GET /altarf/teachers/{id}/pairs", s.listPairsByTeacher)
	s.mux.HandleFunc("GET /altarf/students/{id}/pairs", s.listPairsByStudent)
	s.mux.HandleFunc("POST /altarf/pairs", s.pair)
	s.mux.HandleFunc("POST /altarf/quizzes", s.saveQuiz)
	s.mux.HandleFunc("POST /altarf/quizzes/assign", s.assignQuiz)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// respond writes data, or err when set.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		status, code := lambdaio.Classify(err)
		attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "code", code, "error", err}
		if lc, ok := lambdaio.ContextFrom(r.Context()); ok {
			attrs = append(attrs, "requestId", lc.AwsRequestID)
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", attrs...)
		} else {
			s.logger.Info("request rejected", attrs...)
		}
		lambdaio.ErrorOutput(err).Write(w)
		return
	}
	lambdaio.SuccessOutput(data).Write(w)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

// --- sadalsuud ---

func (s *Server) getAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.GetAllUsers(r.Context())
	s.respond(w, r, users, err)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.GetUserByID(r.Context(), r.PathValue("id"))
	s.respond(w, r, user, err)
}

func (s *Server) getUserByLineID(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.GetUserByLineID(r.Context(), r.PathValue("lineUserId"))
	s.respond(w, r, user, err)
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	var user sadalsuud.User
	if err := decode(r, &user); err != nil {
		s.respond(w, r, nil, err)
		return
	}
	added, err := s.svc.Users.AddUser(r.Context(), user)
	s.respond(w, r, added, err)
}

// --- altarf ---

func (s *Server) listPairsByTeacher(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.svc.Pairs.ListByTeacher(r.Context(), r.PathValue("id"))
	s.respond(w, r, pairs, err)
}

func (s *Server) listPairsByStudent(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.svc.Pairs.ListByStudent(r.Context(), r.PathValue("id"))
	s.respond(w, r, pairs, err)
}

type pairRequest struct {
	TeacherID string `json:"teacherId"`
	StudentID string `json:"studentId"`
}

func (s *Server) pair(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decode(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}
	pair, err := s.svc.Pairs.Pair(r.Context(), req.TeacherID, req.StudentID)
	s.respond(w, r, pair, err)
}

type saveQuizRequest struct {
	LineUserID string `json:"lineUserId"`
	service.SaveQuizParams
}

func (s *Server) saveQuiz(w http.ResponseWriter, r *http.Request) {
	var req saveQuizRequest
	if err := decode(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}
	res, err := s.svc.Quizzes.Save(r.Context(), req.LineUserID, req.SaveQuizParams)
	s.respond(w, r, res, err)
}

type assignQuizRequest struct {
	LineUserID string `json:"lineUserId"`
	service.AssignQuizParams
}

func (s *Server) assignQuiz(w http.ResponseWriter, r *http.Request) {
	var req assignQuizRequest
	if err := decode(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}
	err := s.svc.Quizzes.Assign(r.Context(), req.LineUserID, req.AssignQuizParams)
	s.respond(w, r, nil, err)
}
