package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hashlink/url-shortener/internal/entity"
)

type mockURLUseCase struct {
	mock.Mock
}

func (m *mockURLUseCase) ShortenURL(ctx context.Context, longURL string) (*entity.URL, error) {
	args := m.Called(ctx, longURL)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *mockURLUseCase) ResolveShortCode(ctx context.Context, shortURL string) (*entity.URL, error) {
	args := m.Called(ctx, shortURL)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	logger         *httplog.Logger
	urlUseCaseMock *mockURLUseCase
	server         *httptest.Server
	e              *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlUseCaseMock = new(mockURLUseCase)

	router := NewRouter(suite.logger, suite.urlUseCaseMock, "Gopher")
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlUseCaseMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestGreeting() {
	suite.Run("success", func() {
		suite.e.GET("/").
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("Hello Gopher!")
	})
}

func (suite *HandlersTestSuite) TestHealth() {
	suite.Run("success", func() {
		suite.e.GET("/health").
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("OK")
	})
}

func (suite *HandlersTestSuite) TestGenerate() {
	const path = "/generate"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			IsEqual(map[string]string{"error": "Missing URL"})
	})

	suite.Run("missing url", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			IsEqual(map[string]string{"error": "Missing URL"})
	})

	suite.Run("empty url", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{"url": ""}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			IsEqual(map[string]string{"error": "Missing URL"})
	})

	suite.Run("null url", func() {
		suite.e.POST(path).
			WithBytes([]byte(`{"url": null}`)).
			WithHeader("Content-Type", "application/json").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			IsEqual(map[string]string{"error": "Missing URL"})
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithBytes([]byte(`{"url":`)).
			WithHeader("Content-Type", "application/json").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			IsEqual(map[string]string{"error": "Invalid request body"})
	})

	for _, body := range []string{`{"url": false}`, `{"url": 0}`, `[]`, `"https://example.com"`, `42`} {
		suite.Run("falsy url or non-object body "+body, func() {
			suite.e.POST(path).
				WithBytes([]byte(body)).
				WithHeader("Content-Type", "application/json").
				Expect().
				Status(http.StatusBadRequest).
				JSON().Object().
				IsEqual(map[string]string{"error": "Missing URL"})
		})
	}

	for _, body := range []string{`{"url": 1}`, `{"url": true}`, `{"url": ["https://example.com"]}`} {
		suite.Run("non-string url "+body, func() {
			suite.e.POST(path).
				WithBytes([]byte(body)).
				WithHeader("Content-Type", "application/json").
				Expect().
				Status(http.StatusBadRequest).
				JSON().Object().
				IsEqual(map[string]string{"error": "Invalid request body"})
		})
	}

	suite.Run("request body too large", func() {
		body := `{"url": "https://example.com/` + strings.Repeat("a", maxBodyBytes) + `"}`

		suite.e.POST(path).
			WithBytes([]byte(body)).
			WithHeader("Content-Type", "application/json").
			Expect().
			Status(http.StatusRequestEntityTooLarge).
			JSON().Object().
			IsEqual(map[string]string{"error": "Request body too large"})
	})

	suite.Run("store error", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(nil, fmt.Errorf("usecase: %w", &entity.StoreError{
				Op:  "save",
				Err: errors.New("database is locked"),
			}))

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			IsEqual(map[string]string{"error": "database is locked"})
	})

	suite.Run("unknown error", func() {
		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("error", "unknown error")
	})

	suite.Run("success", func() {
		createdAt := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

		suite.urlUseCaseMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(&entity.URL{
				ID:        42,
				ShortURL:  "3NBE4XK",
				LongURL:   "https://example.com",
				CreatedAt: createdAt,
				ExpiresAt: createdAt.Add(30 * 24 * time.Hour),
			}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.IsEqual(map[string]string{
			"short_url":  "3NBE4XK",
			"created_at": "2024-05-01T10:00:00.000Z",
			"expires_at": "2024-05-31T10:00:00.000Z",
			"long_url":   "https://example.com",
		})
		resp.NotContainsKey("id")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	path := "/%s"

	suite.Run("url not found", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "doesnotexist").
			Once().
			Return(nil, fmt.Errorf("usecase: %w", entity.ErrURLNotFound))

		suite.e.GET(fmt.Sprintf(path, "doesnotexist")).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			IsEqual(map[string]string{"error": "Short URL not found"})
	})

	suite.Run("store error", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "3NBE4XK").
			Once().
			Return(nil, &entity.StoreError{Op: "retrieve", Err: errors.New("no such table: shorturls")})

		suite.e.GET(fmt.Sprintf(path, "3NBE4XK")).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			IsEqual(map[string]string{"error": "no such table: shorturls"})
	})

	suite.Run("success", func() {
		suite.urlUseCaseMock.
			On("ResolveShortCode", mock.Anything, "3NBE4XK").
			Once().
			Return(&entity.URL{
				ShortURL: "3NBE4XK",
				LongURL:  "https://example.com",
			}, nil)

		suite.e.GET(fmt.Sprintf(path, "3NBE4XK")).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
