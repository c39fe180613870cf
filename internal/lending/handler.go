// internal/lending/handler.go
package lending

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"libralend/internal/catalog"
	"libralend/internal/ledger"
	"libralend/internal/membership"
	"libralend/internal/notify"
	"libralend/internal/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var requestValidator = newRequestValidator()

// requestTags maps the custom validation tags to their validators.
var requestTags = map[string]func(string) bool{
	"isbn13":     validate.ISBN,
	"userid":     validate.UserID,
	"authorname": validate.Author,
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	for tag, check := range requestTags {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

// fieldErrors maps a request field that failed validation to the error the
// service would have returned for it.
var fieldErrors = map[string]error{
	"ISBN":    ErrInvalidISBN,
	"Title":   ErrInvalidTitle,
	"Author":  ErrInvalidAuthor,
	"ID":      ErrInvalidUserID,
	"Name":    ErrInvalidUserName,
	"Channel": ErrInvalidNotifier,
}

type addBookRequest struct {
	ISBN   string `json:"isbn" validate:"isbn13"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"authorname"`
}

type registerUserRequest struct {
	ID      string `json:"id" validate:"userid"`
	Name    string `json:"name" validate:"required"`
	Channel string `json:"channel" validate:"required"`
}

// userRequest carries the user for borrow and notify. The service validates
// the id itself so that a missing book is reported first.
type userRequest struct {
	UserID string `json:"user_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	service  Service
	resolver notify.Resolver
	history  catalog.HistoryReader
	log      zerolog.Logger
}

// NewHandler wires the lending service to HTTP. history may be nil, in which
// case the history route is not mounted.
func NewHandler(service Service, resolver notify.Resolver, history catalog.HistoryReader, log zerolog.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, history: history, log: log}
}

// Routes returns the router for the lending API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/users", h.handleRegisterUser)
	r.Route("/books", func(r chi.Router) {
		r.Post("/", h.handleAddBook)
		r.Route("/{isbn}", func(r chi.Router) {
			r.Get("/", h.handleGetBook)
			r.Post("/borrow", h.handleBorrow)
			r.Post("/return", h.handleReturn)
			r.Post("/notify", h.handleNotify)
			if h.history != nil {
				r.Get("/history", h.handleHistory)
			}
		})
	})
	return r
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if !h.decode(w, r, &req) {
		return
	}

	book := &catalog.Book{ISBN: req.ISBN, Title: req.Title, Author: req.Author}
	if err := h.service.AddBook(r.Context(), book); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, book)
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	sink, err := h.resolver.Resolve(req.Channel)
	if err != nil {
		h.log.Debug().Err(err).Str("channel", req.Channel).Msg("unresolvable channel")
		h.writeError(w, ErrInvalidNotifier)
		return
	}

	user := &membership.User{ID: req.ID, Name: req.Name, Channel: req.Channel, Notifier: sink}
	if err := h.service.RegisterUser(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.BorrowBook(r.Context(), chi.URLParam(r, "isbn"), req.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReturnBook(r.Context(), chi.URLParam(r, "isbn")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.NotifyUserWithBookReviews(r.Context(), chi.URLParam(r, "isbn"), req.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBookByISBN(r.Context(), chi.URLParam(r, "isbn"), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, book)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if err := requestValidator.Var(isbn, "isbn13"); err != nil {
		h.writeError(w, ErrInvalidISBN)
		return
	}

	entries, err := h.history.History(r.Context(), isbn)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// decode reads and validates a JSON body. It writes the error response and
// returns false when the request is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}

	err := requestValidator.Struct(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if mapped, ok := fieldErrors[verrs[0].StructField()]; ok {
			h.writeError(w, mapped)
			return false
		}
	}
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
		h.writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusCode maps an error kind to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoReviews):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrReviewUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNotificationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
