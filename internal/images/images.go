// Package images defines the article-image provider interface and the
// best-effort attachment of a found image to an article. Image failures
// never block publication.
package images

import (
	"context"

	"satirewire/internal/core"
)

// Query describes the article an image is wanted for.
type Query struct {
	Title          string
	Trend          string
	Category       string
	SourceHeadline string
	Slug           string
}

// Provider finds one image for an article. A nil image with nil error
// means nothing suitable was found.
type Provider interface {
	FindImage(ctx context.Context, q Query) (*core.Image, error)
}

// Disabled is the no-op provider used when image mode is off.
type Disabled struct{}

// FindImage never finds anything.
func (Disabled) FindImage(_ context.Context, _ Query) (*core.Image, error) {
	return nil, nil
}

// Attach copies an image onto the article, filling the convenience
// fields from the size variants: large or original for the main URL,
// thumb, small or original for the thumbnail.
func Attach(a *core.Article, img *core.Image) {
	if img == nil || img.URLs.Original == "" {
		return
	}
	a.Image = img

	a.ImageURL = img.URLs.Large
	if a.ImageURL == "" {
		a.ImageURL = img.URLs.Original
	}

	a.ThumbnailURL = img.URLs.Thumb
	if a.ThumbnailURL == "" {
		a.ThumbnailURL = img.URLs.Small
	}
	if a.ThumbnailURL == "" {
		a.ThumbnailURL = img.URLs.Original
	}

	a.ImageSource = img.SourcePageURL
	if img.License != nil {
		a.ImageLicense = img.License.Short
	}
}
