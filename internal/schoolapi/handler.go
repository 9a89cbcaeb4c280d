package schoolapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/matheus3301/classnotes/internal/school"
	"go.uber.org/zap"
)

// Handler serves the school REST routes.
type Handler struct {
	repo     Repository
	accounts *Accounts
	logger   *zap.Logger
	validate *validator.Validate
	router   chi.Router
}

func NewHandler(repo Repository, accounts *Accounts, logger *zap.Logger) *Handler {
	h := &Handler{
		repo:     repo,
		accounts: accounts,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	h.router = h.routes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/login", h.login)

	r.Route("/class", func(r chi.Router) {
		r.Get("/all", h.listClasses)
		r.Get("/{id}", h.getClass)
		r.Post("/add", h.addClass)
		r.Put("/update", h.updateClass)
		r.Delete("/delete/{id}", h.deleteClass)
	})
	r.Route("/etudiant", func(r chi.Router) {
		r.Get("/byClass/{id}", h.studentsByClass)
		r.Post("/add", h.addStudent)
		r.Put("/update", h.updateStudent)
		r.Delete("/delete/{id}", h.deleteStudent)
	})
	r.Route("/matiere", func(r chi.Router) {
		r.Get("/all", h.listSubjects)
		r.Post("/add", h.addSubject)
		r.Put("/update", h.updateSubject)
		r.Delete("/delete/{id}", h.deleteSubject)
		r.Post("/addToClasse", h.linkSubject)
		r.Delete("/deleteFromClasse/{classID}/{subjectID}", h.unlinkSubject)
	})
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	ok, err := h.accounts.Check(r.Context(), body.Email, body.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *Handler) listClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.repo.Classes(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if classes == nil {
		classes = []school.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handler) getClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	class, err := h.repo.Class(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

func (h *Handler) addClass(w http.ResponseWriter, r *http.Request) {
	var c school.Class
	if !h.decode(w, r, &c) {
		return
	}
	created, err := h.repo.CreateClass(r.Context(), c)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) updateClass(w http.ResponseWriter, r *http.Request) {
	var c school.Class
	if !h.decode(w, r, &c) {
		return
	}
	if c.ID <= 0 {
		writeError(w, http.StatusBadRequest, "codClass is required")
		return
	}
	updated, err := h.repo.UpdateClass(r.Context(), c)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteClass(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) studentsByClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	students, err := h.repo.StudentsByClass(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if students == nil {
		students = []school.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *Handler) addStudent(w http.ResponseWriter, r *http.Request) {
	var s school.Student
	if !h.decode(w, r, &s) {
		return
	}
	if s.ClassID <= 0 {
		writeError(w, http.StatusBadRequest, "classe.codClass is required")
		return
	}
	created, err := h.repo.CreateStudent(r.Context(), s)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	var s school.Student
	if !h.decode(w, r, &s) {
		return
	}
	if s.ID <= 0 || s.ClassID <= 0 {
		writeError(w, http.StatusBadRequest, "id and classe.codClass are required")
		return
	}
	updated, err := h.repo.UpdateStudent(r.Context(), s)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteStudent(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repo.Subjects(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if subjects == nil {
		subjects = []school.Subject{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *Handler) addSubject(w http.ResponseWriter, r *http.Request) {
	var s school.Subject
	if !h.decode(w, r, &s) {
		return
	}
	created, err := h.repo.CreateSubject(r.Context(), s)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) updateSubject(w http.ResponseWriter, r *http.Request) {
	var s school.Subject
	if !h.decode(w, r, &s) {
		return
	}
	if s.ID <= 0 {
		writeError(w, http.StatusBadRequest, "codMat is required")
		return
	}
	updated, err := h.repo.UpdateSubject(r.Context(), s)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteSubject(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) linkSubject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Class struct {
			ID int64 `json:"codClass" validate:"gt=0"`
		} `json:"classe"`
		Subject struct {
			ID int64 `json:"codMat" validate:"gt=0"`
		} `json:"matiere"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.repo.LinkSubject(r.Context(), body.Class.ID, body.Subject.ID); err != nil {
		h.fail(w, err)
		return
	}
	class, err := h.repo.Class(r.Context(), body.Class.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

func (h *Handler) unlinkSubject(w http.ResponseWriter, r *http.Request) {
	classID, ok := pathID(w, r, "classID")
	if !ok {
		return
	}
	subjectID, ok := pathID(w, r, "subjectID")
	if !ok {
		return
	}
	if err := h.repo.UnlinkSubject(r.Context(), classID, subjectID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a JSON body, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
