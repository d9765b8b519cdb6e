package course

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

	router.Get("/", handler.listCourses)
	router.Get("/{id}", handler.getCourse)
	router.Get("/by-slug/{slug}", handler.getCourseBySlug)

	router.Group(func(faculty chi.Router) {
		faculty.Use(middleware.RequireRole(sec.RoleFaculty))
		faculty.Post("/", handler.createCourse)
		faculty.Post("/{id}/enroll", handler.enroll)
		faculty.Delete("/{id}/enroll/{studentID}", handler.unenroll)
	})

	return router
}

type createCourseRequest struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Semester    string  `json:"semester"`
}

type enrollRequest struct {
	StudentID string `json:"student_id"`
}

func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var courses []*Course
	if sec.UserRole(claims.Role).AtLeast(sec.RoleFaculty) {
		courses, err = handler.service.ListForFaculty(request.Context(), claims.UserID)
	} else {
		courses, err = handler.service.ListForStudent(request.Context(), claims.UserID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, courses)
}

func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.service.GetCourse(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *Handler) getCourseBySlug(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.service.GetCourseBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	var input createCourseRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("code", input.Code).
		Required("title", input.Title).
		Required("semester", input.Semester)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.service.CreateCourse(request.Context(), CreateInput{
		Code:        input.Code,
		Title:       input.Title,
		Description: input.Description,
		FacultyID:   claims.UserID,
		Semester:    input.Semester,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, course)
}

func (handler *Handler) enroll(writer http.ResponseWriter, request *http.Request) {
	var input enrollRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("student_id", input.StudentID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Enroll(request.Context(), requestutil.Param(request, "id"), input.StudentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) unenroll(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.Unenroll(request.Context(),
		requestutil.Param(request, "id"),
		requestutil.Param(request, "studentID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
