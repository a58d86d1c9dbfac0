// Package qr renders verification QR codes as <img src> values.
package qr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const size = 256

// objectStore is the subset of the S3 store needed to host images.
type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Renderer encodes content as a PNG QR code. With no store the PNG is
// returned inline as a data URI; with a store it is uploaded and a presigned
// URL valid for ttl is returned.
type Renderer struct {
	store objectStore
}

// NewDataURIRenderer returns a Renderer that embeds images inline.
func NewDataURIRenderer() *Renderer { return &Renderer{} }

// NewHostedRenderer returns a Renderer that uploads images to store.
func NewHostedRenderer(store objectStore) *Renderer { return &Renderer{store: store} }

// PNG encodes content at medium error correction.
func PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (r *Renderer) Render(ctx context.Context, key, content string, ttl time.Duration) (string, error) {
	png, err := PNG(content)
	if err != nil {
		return "", err
	}
	if r.store == nil {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
	}
	objKey := "verification-qr/" + key + ".png"
	if _, err := r.store.Upload(ctx, objKey, bytes.NewReader(png), "image/png"); err != nil {
		return "", err
	}
	return r.store.PresignedURL(ctx, objKey, ttl)
}
