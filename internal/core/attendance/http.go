package attendance

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vericlass/vericlass/internal/platform/middleware"
	"github.com/vericlass/vericlass/internal/platform/respond"
	"github.com/vericlass/vericlass/internal/platform/sec"
	"github.com/vericlass/vericlass/internal/platform/validate"

	requestutil "github.com/vericlass/vericlass/internal/platform/request"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/sessions/course/{courseID}", handler.listSessions)
	router.Post("/sessions/{id}/mark", handler.mark)
	router.Get("/summary/course/{courseID}/me", handler.mySummary)

	router.Group(func(faculty chi.Router) {
		faculty.Use(middleware.RequireRole(sec.RoleFaculty))
		faculty.Post("/sessions", handler.openSession)
		faculty.Post("/sessions/{id}/close", handler.closeSession)
		faculty.Get("/sessions/{id}/roster", handler.roster)
		faculty.Put("/sessions/{id}/records/{studentID}", handler.override)
		faculty.Get("/summary/course/{courseID}", handler.courseSummary)
	})

	return router
}

type openSessionRequest struct {
	CourseID string    `json:"course_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type markRequest struct {
	Method string `json:"method"`
}

type overrideRequest struct {
	Status string `json:"status"`
}

func (handler *Handler) openSession(writer http.ResponseWriter, request *http.Request) {
	var input openSessionRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("course_id", input.CourseID).
		Custom("starts_at", input.StartsAt.IsZero(), "is required").
		Custom("ends_at", input.EndsAt.IsZero(), "is required")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.OpenSession(request.Context(), input.CourseID, input.StartsAt, input.EndsAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, session)
}

func (handler *Handler) closeSession(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.CloseSession(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	sessions, err := handler.service.ListSessions(request.Context(), requestutil.Param(request, "courseID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sessions)
}

func (handler *Handler) mark(writer http.ResponseWriter, request *http.Request) {
	var input markRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	if input.Method == "" {
		input.Method = "manual"
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Mark(request.Context(), requestutil.Param(request, "id"), claims.UserID, input.Method)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) override(writer http.ResponseWriter, request *http.Request) {
	var input overrideRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	record, err := handler.service.Override(request.Context(),
		requestutil.Param(request, "id"),
		requestutil.Param(request, "studentID"),
		RecordStatus(input.Status),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) roster(writer http.ResponseWriter, request *http.Request) {
	records, err := handler.service.Roster(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, records)
}

func (handler *Handler) courseSummary(writer http.ResponseWriter, request *http.Request) {
	summaries, err := handler.service.CourseSummary(request.Context(), requestutil.Param(request, "courseID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summaries)
}

func (handler *Handler) mySummary(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.StudentSummary(request.Context(), requestutil.Param(request, "courseID"), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}
