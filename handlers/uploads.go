package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// formImage returns the file uploaded in field, or nil when the request
// carries none.
func formImage(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	return fh, nil
}

// pendingImage is a validated upload with its media-relative target path.
type pendingImage struct {
	file *multipart.FileHeader
	path string
}

type pendingImages map[string]pendingImage

// paths maps each uploaded field to the path it will be stored at.
func (p pendingImages) paths() map[string]string {
	out := make(map[string]string, len(p))
	for field, img := range p {
		out[field] = img.path
	}
	return out
}

// prepareImages validates every listed image field (field name -> media
// subdirectory) and names the files without writing anything. Absent fields
// are skipped. On failure it writes the response and returns ok=false.
func (h *Handler) prepareImages(c *gin.Context, fields map[string]string) (pendingImages, bool) {
	pending := make(pendingImages, len(fields))
	for field, dir := range fields {
		fh, err := formImage(c, field)
		if err != nil {
			bindError(c, err)
			return nil, false
		}
		if fh == nil {
			continue
		}
		if !validImageName(fh.Filename) {
			fieldError(c, field, imageExtMessage())
			return nil, false
		}
		name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		pending[field] = pendingImage{file: fh, path: path.Join(dir, name)}
	}
	return pending, true
}

// saveImages writes the pending uploads under MEDIA_ROOT. Nothing is left
// behind when one of them fails.
func (h *Handler) saveImages(c *gin.Context, pending pendingImages) error {
	written := make(pendingImages, len(pending))
	for field, img := range pending {
		target := filepath.Join(h.cfg.MediaRoot, filepath.FromSlash(img.path))
		err := os.MkdirAll(filepath.Dir(target), 0o755)
		if err == nil {
			err = c.SaveUploadedFile(img.file, target)
		}
		if err != nil {
			h.discardImages(written)
			return fmt.Errorf("save upload %s: %w", field, err)
		}
		written[field] = img
	}
	return nil
}

// discardImages removes stored uploads after the write they belonged to failed.
func (h *Handler) discardImages(pending pendingImages) {
	for _, img := range pending {
		target := filepath.Join(h.cfg.MediaRoot, filepath.FromSlash(img.path))
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn().Err(err).Str("path", img.path).Msg("remove orphaned upload")
		}
	}
}

// saveWithImages runs fn in a transaction and stores the uploads as its last
// step. Stored files are removed again if the transaction fails.
func (h *Handler) saveWithImages(c *gin.Context, pending pendingImages, fn func(tx *gorm.DB) error) error {
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return h.saveImages(c, pending)
	})
	if err != nil {
		h.discardImages(pending)
	}
	return err
}
