package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/hashlink/url-shortener/internal/entity"
	"github.com/hashlink/url-shortener/internal/shortcode"
)

// DefaultTTL is the lifetime recorded for a new short URL.
const DefaultTTL = 30 * 24 * time.Hour

type urlRepository interface {
	Save(ctx context.Context, shortURL, longURL string, createdAt, expiresAt time.Time) (*entity.URL, error)
	RetrieveByShortURL(ctx context.Context, shortURL string) (*entity.URL, error)
}

type URLUseCase struct {
	ttl     time.Duration
	urlRepo urlRepository
	now     func() time.Time
}

func New(ttl time.Duration, urlRepo urlRepository) *URLUseCase {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &URLUseCase{
		ttl:     ttl,
		urlRepo: urlRepo,
		now:     time.Now,
	}
}

// ShortenURL stores a new mapping for longURL. Submitting the same URL twice
// stores two rows with the same short code.
func (uc *URLUseCase) ShortenURL(ctx context.Context, longURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	createdAt := uc.now().UTC()
	expiresAt := createdAt.Add(uc.ttl)

	url, err := uc.urlRepo.Save(ctx, shortcode.Generate(longURL), longURL, createdAt, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveByShortURL(ctx, shortURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}
