package http

import (
	"errors"

	"github.com/hashlink/url-shortener/internal/entity"
)

// generateRequest is the body of POST /generate.
type generateRequest struct {
	URL string `json:"url" validate:"required"`
}

var errURLNotString = errors.New("url is not a string")

// newGenerateRequest extracts the url field from a decoded JSON body.
// A body that is not an object, and a url that is null, false, 0 or "",
// yield an empty request. Any other non-string url is an error.
func newGenerateRequest(body any) (generateRequest, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return generateRequest{}, nil
	}

	switch v := obj["url"].(type) {
	case nil:
		return generateRequest{}, nil
	case string:
		return generateRequest{URL: v}, nil
	case bool:
		if !v {
			return generateRequest{}, nil
		}
	case float64:
		if v == 0 {
			return generateRequest{}, nil
		}
	}

	return generateRequest{}, errURLNotString
}

// urlResponse echoes a stored URL. The store-assigned ID is deliberately absent.
type urlResponse struct {
	ShortURL  string `json:"short_url"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
	LongURL   string `json:"long_url"`
}

func toURLResponse(url *entity.URL) urlResponse {
	return urlResponse{
		ShortURL:  url.ShortURL,
		CreatedAt: entity.FormatTimestamp(url.CreatedAt),
		ExpiresAt: entity.FormatTimestamp(url.ExpiresAt),
		LongURL:   url.LongURL,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

var (
	missingURLResponse = errorResponse{
		Error: "Missing URL",
	}

	invalidRequestBodyResponse = errorResponse{
		Error: "Invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Error: "Short URL not found",
	}

	requestTooLargeResponse = errorResponse{
		Error: "Request body too large",
	}
)
