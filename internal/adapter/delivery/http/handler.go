package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/hashlink/url-shortener/internal/entity"
)

func handleGreeting(name string) http.HandlerFunc {
	greeting := fmt.Sprintf("Hello %s!", name)

	return func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, greeting)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "OK")
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, longURL string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortURL string) (*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *urlHandler) generate(w http.ResponseWriter, r *http.Request) {
	var body any

	if err := render.DecodeJSON(r.Body, &body); err != nil {
		var maxBytesErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, missingURLResponse)
		case errors.As(err, &maxBytesErr):
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, requestTooLargeResponse)
		default:
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidRequestBodyResponse)
		}
		return
	}

	req, err := newGenerateRequest(body)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, missingURLResponse)
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortURL := chi.URLParam(r, "shortURL")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortURL)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, url.LongURL, http.StatusFound)
}

// serverError reports err as a 500. Store failures expose the driver message.
func (h *urlHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	msg := err.Error()

	var storeErr *entity.StoreError
	if errors.As(err, &storeErr) {
		msg = storeErr.Err.Error()
	}

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, errorResponse{Error: msg})
}
