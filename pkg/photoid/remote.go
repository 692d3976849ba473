package photoid

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// CutoutClient calls the remote background removal service. One request per
// capture: the photo goes up as PNG, the cutout comes back already composited
// onto a white background. Failures are never retried; the upstream reply
// reaches the caller verbatim so the user can act on it.
type CutoutClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewCutoutClient builds a client for the given endpoint. A nil httpClient
// gets a default with the request timeout applied.
func NewCutoutClient(endpoint, apiKey string, httpClient *http.Client) *CutoutClient {
	if endpoint == "" {
		endpoint = DefaultCutoutEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cutoutRequestTimeout}
	}
	return &CutoutClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cutoutRequestsPerMin)/60, 1),
	}
}

// Cutout uploads the photo and returns the decoded white-background result.
// A non-2xx reply surfaces as a *RemoteError carrying the upstream status and
// body verbatim.
func (c *CutoutClient) Cutout(ctx context.Context, photo image.Image) (*image.NRGBA, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("cutout service: no API key configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("cutout service rate limit: %w", err)
	}

	body, contentType, err := c.buildRequestBody(photo)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating cutout request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cutout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	img, err := png.Decode(io.LimitReader(resp.Body, maxCutoutResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding cutout response: %w", err)
	}

	out := image.NewNRGBA(img.Bounds().Sub(img.Bounds().Min))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			out.Set(x, y, img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y))
		}
	}
	return out, nil
}

// buildRequestBody assembles the multipart form the service expects: the PNG
// under image_file plus the fixed processing options.
func (c *CutoutClient) buildRequestBody(photo image.Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image_file", "photo.png")
	if err != nil {
		return nil, "", fmt.Errorf("building cutout request: %w", err)
	}
	if err := png.Encode(part, photo); err != nil {
		return nil, "", fmt.Errorf("%w: encoding upload: %v", ErrEncoding, err)
	}

	for field, value := range map[string]string{
		"size":     "auto",
		"format":   "png",
		"bg_color": "FFFFFF",
	} {
		if err := w.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("building cutout request: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("building cutout request: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
