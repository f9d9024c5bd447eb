package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auric/jewelry-be/internal/apperr"
)

func multipartRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSave_AcceptsMatchingImage(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	content := bytes.Repeat([]byte{0xab}, 2<<20) // 2 MiB
	req := multipartRequest(t, "image", "ring.jpg", "image/jpeg", content)

	stored, err := store.Save(req, "image", CategoryProducts)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NotEqual(t, "ring.jpg", stored.Filename)
	assert.True(t, strings.HasPrefix(stored.Filename, "image-"))
	assert.True(t, strings.HasSuffix(stored.Filename, ".jpg"))
	assert.Equal(t, int64(len(content)), stored.Size)

	written, err := os.ReadFile(filepath.Join(store.dir(CategoryProducts), stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, content, written)
}

func TestSave_RejectsMismatchedPair(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	// Allowed extension, disallowed declared type: both signals must pass.
	req := multipartRequest(t, "image", "notes.png", "text/plain", []byte("hello"))
	_, err := store.Save(req, "image", CategoryProducts)
	require.Error(t, err)
	assert.Equal(t, "unsupported_media_type", apperr.From(err).Code)

	// Disallowed extension, allowed declared type.
	req = multipartRequest(t, "image", "script.sh", "image/png", []byte("hello"))
	_, err = store.Save(req, "image", CategoryProducts)
	require.Error(t, err)
	assert.Equal(t, "unsupported_media_type", apperr.From(err).Code)
}

func TestSave_RejectsOversizedFile(t *testing.T) {
	store := NewStore(t.TempDir(), 1024)
	require.NoError(t, store.EnsureDirs())

	req := multipartRequest(t, "image", "big.jpg", "image/jpeg", bytes.Repeat([]byte{1}, 4096))
	_, err := store.Save(req, "image", CategoryProducts)
	require.Error(t, err)
	assert.Equal(t, "payload_too_large", apperr.From(err).Code)

	// Nothing may be left behind under the category directory.
	entries, err := os.ReadDir(store.dir(CategoryProducts))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_MissingFileIsNotAnError(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("design_name", "band"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	stored, err := store.Save(req, "reference_image", CategoryDesigns)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSave_NonMultipartIsNotAnError(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	stored, err := store.Save(req, "image", CategoryProducts)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSave_GeneratedNamesAreUnique(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		req := multipartRequest(t, "image", "same.png", "image/png", []byte{1, 2, 3})
		stored, err := store.Save(req, "image", CategoryProducts)
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.False(t, seen[stored.Filename], "duplicate generated name %q", stored.Filename)
		seen[stored.Filename] = true
	}
}

func TestRemove_Idempotent(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)
	require.NoError(t, store.EnsureDirs())

	req := multipartRequest(t, "image", "gone.gif", "image/gif", []byte{1})
	stored, err := store.Save(req, "image", CategoryDesigns)
	require.NoError(t, err)

	require.NoError(t, store.Remove(CategoryDesigns, stored.Filename))
	// Second removal of the same file must not fail.
	require.NoError(t, store.Remove(CategoryDesigns, stored.Filename))
	// And an empty filename is a no-op.
	require.NoError(t, store.Remove(CategoryDesigns, ""))
}

func TestRemove_RejectsPathTraversal(t *testing.T) {
	store := NewStore(t.TempDir(), 5<<20)

	err := store.Remove(CategoryDesigns, "../products/steal.jpg")
	require.Error(t, err)
	assert.Equal(t, "validation_failed", apperr.From(err).Code)
}
