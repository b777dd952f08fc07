package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
	"github.com/vadimbarashkov/url-shortener-client/internal/linklist"
	"github.com/vadimbarashkov/url-shortener-client/internal/session"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	aliasAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasLength   = 8
)

var (
	usernameCharsRx = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	aliasCharsRx    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

// authGateway is the slice of the backend gateway the handlers need for
// credential exchange.
type authGateway interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// sessionController is the session lifecycle surface used by the handlers.
type sessionController interface {
	Status() session.Status
	User() *entity.UserProfile
	Login(ctx context.Context, credential string) (session.Status, error)
	Logout(ctx context.Context) error
}

// linkController is the link collection surface used by the handlers.
type linkController interface {
	Load(ctx context.Context) error
	Links() []entity.Link
	Create(ctx context.Context, originalURL, customAlias string) (*entity.Link, error)
	Delete(ctx context.Context, id int64) error
}

// flagStore tracks the transient "copied" feedback flags.
type flagStore interface {
	MarkActive(key string, d time.Duration)
	Active(key string) bool
}

func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameCharsRx.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("alias_chars", func(fl validator.FieldLevel) bool {
		return aliasCharsRx.MatchString(fl.Field().String())
	})

	return validate
}

type authHandler struct {
	gw       authGateway
	session  sessionController
	validate *validator.Validate
}

func newAuthHandler(gw authGateway, sess sessionController, validate *validator.Validate) *authHandler {
	return &authHandler{
		gw:       gw,
		session:  sess,
		validate: validate,
	}
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	if err := h.gw.Register(r.Context(), req.Username, req.Password); err != nil {
		renderBackendError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, messageResponse{
		Status:  statusSuccess,
		Message: "account created, you can sign in now",
	})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	token, err := h.gw.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	status, err := h.session.Login(r.Context(), token)
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	if status != session.StatusAuthenticated {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, sessionInvalidResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSessionResponse(status, h.session.User()))
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSessionResponse(h.session.Status(), nil))
}

func (h *authHandler) getSession(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSessionResponse(h.session.Status(), h.session.User()))
}

type linkHandler struct {
	links     linkController
	session   sessionController
	flags     flagStore
	copiedTTL time.Duration
	validate  *validator.Validate
}

func newLinkHandler(links linkController, sess sessionController, flags flagStore, copiedTTL time.Duration, validate *validator.Validate) *linkHandler {
	return &linkHandler{
		links:     links,
		session:   sess,
		flags:     flags,
		copiedTTL: copiedTTL,
		validate:  validate,
	}
}

func (h *linkHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Load(r.Context()); err != nil {
		renderBackendError(w, r, err)
		return
	}

	links := h.links.Links()
	resp := make([]linkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, toLinkResponse(link, h.flags.Active(linklist.FlagKey(link.ID))))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *linkHandler) createLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	link, err := h.links.Create(r.Context(), req.OriginalURL, req.CustomAlias)
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toLinkResponse(*link, false))
}

func (h *linkHandler) deleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidLinkIDResponse)
		return
	}

	if err := h.links.Delete(r.Context(), id); err != nil {
		renderBackendError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

func (h *linkHandler) markCopied(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidLinkIDResponse)
		return
	}

	if !h.ownsLink(id) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, linkNotFoundResponse)
		return
	}

	h.flags.MarkActive(linklist.FlagKey(id), h.copiedTTL)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, messageResponse{
		Status:  statusSuccess,
		Message: "copied",
	})
}

func (h *linkHandler) ownsLink(id int64) bool {
	for _, link := range h.links.Links() {
		if link.ID == id {
			return true
		}
	}
	return false
}

func (h *linkHandler) suggestAlias(w http.ResponseWriter, r *http.Request) {
	alias, err := gonanoid.Generate(aliasAlphabet, aliasLength)
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, aliasResponse{Alias: alias})
}

// decodeRequest decodes and validates a JSON request body, rendering the
// appropriate error response on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return false
	}

	return true
}

// renderBackendError maps classified core errors onto HTTP responses.
func renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *entity.ValidationError
	var terr *entity.TransportError

	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, backendValidationResponse(verr))
	case errors.Is(err, entity.ErrSessionInvalid):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, sessionInvalidResponse)
	case errors.Is(err, entity.ErrLinkNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, linkNotFoundResponse)
	case errors.Is(err, entity.ErrDeletePending):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, deleteConflictResponse)
	case errors.As(err, &terr):
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, backendUnavailableResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
	}
}
