package photoid

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhoto() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = 90
		img.Pix[i+1] = 60
		img.Pix[i+2] = 40
		img.Pix[i+3] = 255
	}
	return img
}

func TestCutoutClientSendsExpectedForm(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	var gotFile bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		require.NoError(t, r.ParseMultipartForm(10<<20))

		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		_, _, err := r.FormFile("image_file")
		gotFile = err == nil

		w.Header().Set("Content-Type", "image/png")
		out := image.NewNRGBA(image.Rect(0, 0, 20, 20))
		for i := range out.Pix {
			out.Pix[i] = 255
		}
		require.NoError(t, png.Encode(w, out))
	}))
	defer srv.Close()

	client := NewCutoutClient(srv.URL, "secret-key", srv.Client())
	result, err := client.Cutout(context.Background(), testPhoto())
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.True(t, gotFile, "the photo must be uploaded under image_file")
	assert.Equal(t, "auto", gotFields["size"])
	assert.Equal(t, "png", gotFields["format"])
	assert.Equal(t, "FFFFFF", gotFields["bg_color"])

	assert.Equal(t, 20, result.Bounds().Dx())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, result.NRGBAAt(5, 5))
}

func TestCutoutClientSurfacesRemoteErrorVerbatim(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"errors":[{"title":"Insufficient credits"}]}`))
	}))
	defer srv.Close()

	client := NewCutoutClient(srv.URL, "secret-key", srv.Client())
	_, err := client.Cutout(context.Background(), testPhoto())
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusPaymentRequired, remoteErr.Status)
	assert.Contains(t, remoteErr.Body, "Insufficient credits", "upstream diagnostics reach the caller")
	assert.Equal(t, 1, calls, "failed requests are never retried")
}

func TestCutoutClientRequiresAPIKey(t *testing.T) {
	client := NewCutoutClient("http://localhost:1", "", nil)
	_, err := client.Cutout(context.Background(), testPhoto())
	assert.Error(t, err)
}

func TestCutoutClientRejectsGarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a png"))
	}))
	defer srv.Close()

	client := NewCutoutClient(srv.URL, "secret-key", srv.Client())
	_, err := client.Cutout(context.Background(), testPhoto())
	assert.Error(t, err)
}

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{Status: 403, Body: "forbidden"}
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
}
