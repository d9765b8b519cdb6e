package announcement

import (
	"net/http"

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

	router.Get("/course/{courseID}", handler.listForCourse)

	router.Group(func(faculty chi.Router) {
		faculty.Use(middleware.RequireRole(sec.RoleFaculty))
		faculty.Post("/", handler.post)
		faculty.Delete("/{id}", handler.remove)
	})

	return router
}

type postRequest struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

func (handler *Handler) listForCourse(writer http.ResponseWriter, request *http.Request) {
	announcements, err := handler.service.ListForCourse(request.Context(), requestutil.Param(request, "courseID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, announcements)
}

func (handler *Handler) post(writer http.ResponseWriter, request *http.Request) {
	var input postRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("course_id", input.CourseID).
		Required("title", input.Title).
		MaxLen("title", input.Title, 200).
		Required("body", input.Body)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	announcement, err := handler.service.Post(request.Context(), CreateInput{
		CourseID: input.CourseID,
		AuthorID: claims.UserID,
		Title:    input.Title,
		Body:     input.Body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, announcement)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Remove(request.Context(), requestutil.Param(request, "id"), claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
