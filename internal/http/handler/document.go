package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfdrop/internal/http/middleware"
	"pdfdrop/internal/model"
	"pdfdrop/internal/service"
)

// uploadResponse is the success body for POST /api/upload.
type uploadResponse struct {
	OK   bool            `json:"ok"`
	File *model.Document `json:"file"`
}

// UploadDocument handles POST /api/upload (multipart/form-data, field
// name: file). Authorization is enforced by the access-gate middleware
// before this handler runs. metrics may be nil in tests.
func UploadDocument(svc service.DocumentService, metrics *middleware.PrometheusMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "No file uploaded")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "No file uploaded")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		doc, err := svc.Ingest(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoFile):
				return writeError(c, fiber.StatusBadRequest, "No file uploaded")
			case errors.Is(err, service.ErrUnsupportedType):
				return writeError(c, fiber.StatusBadRequest, "Only PDF files are allowed")
			case errors.Is(err, service.ErrTooLarge):
				return writeError(c, fiber.StatusBadRequest, "File too large")
			default:
				return writeError(c, fiber.StatusInternalServerError, "Upload failed")
			}
		}

		if metrics != nil {
			metrics.ObserveUpload(doc.Size)
		}
		return c.JSON(uploadResponse{OK: true, File: doc})
	}
}

// ListFiles handles GET /api/files: the full record list, newest first,
// no auth (public listing by design).
func ListFiles(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "Internal error")
		}
		return c.JSON(docs)
	}
}

// DownloadFile handles GET /api/files/:id, streaming the stored bytes as
// an attachment. Unknown ids and dangling records both answer with a
// plain-text 404.
func DownloadFile(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		doc, rc, err := svc.Fetch(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).SendString("Not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "Internal error")
		}

		// Strip double quotes so the attachment header stays well-formed;
		// the name is otherwise passed through as supplied.
		name := strings.ReplaceAll(doc.OriginalName, `"`, "")
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)

		// fasthttp closes the stream after serving when it is a ReadCloser.
		return c.SendStream(rc, int(doc.Size))
	}
}

// Health handles GET /api/health. Always 200, no dependency checks: the
// endpoint reports process liveness only.
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	}
}
