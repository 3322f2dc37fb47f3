package admin

import (
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/storage"
)

// maxImageBytes caps uploads at 10 MB.
const maxImageBytes = 10 << 20

// allowedImageTypes maps accepted content types to their canonical extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImagesHandler manages catalog image uploads.
type ImagesHandler struct {
	store storage.Storage
}

// NewImagesHandler creates an images handler.
func NewImagesHandler(store storage.Storage) *ImagesHandler {
	return &ImagesHandler{store: store}
}

type imageView struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Upload accepts a multipart form with an "image" field, stores the file and
// returns its key and public URL.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("admin.images.upload", "Upload must be a multipart form under 10 MB"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("admin.images.upload", "Missing image file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "admin.images.upload", "Unsupported image type %q", contentType))
		return
	}

	key := "images/" + uuid.NewString() + ext
	url, err := h.store.Put(r.Context(), key, file, contentType)
	if err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINTERNAL, "admin.images.upload", "Failed to store image"))
		return
	}

	handler.JSON(w, http.StatusCreated, imageView{Key: key, URL: url})
}

// Delete removes an uploaded image by its filename.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	// Keys are flat uuid filenames under images/; reject anything that could
	// escape that prefix.
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		handler.ErrorResponse(w, r, domain.Invalid("admin.images.delete", "Invalid image name"))
		return
	}

	if err := h.store.Delete(r.Context(), "images/"+name); err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINTERNAL, "admin.images.delete", "Failed to delete image"))
		return
	}
	handler.NoContent(w)
}
