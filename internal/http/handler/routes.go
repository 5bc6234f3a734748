package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"noteapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, noteSvc service.NoteService, reg *prometheus.Registry) {
	// Serve the OpenAPI document and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Welcome and liveness endpoints, no business logic.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to Multimodal AI Note-Taker API"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Backward-compatible simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	// Submit a job: multipart/form-data with optional `audio` file,
	// zero-or-more `images` files, and an optional `notes` text field.
	// The response never waits for synthesis.
	api.Post("/upload", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FORM_REQUIRED", "multipart form is required")
		}

		sub := service.Submission{Notes: c.FormValue("notes")}

		var closers []io.Closer
		defer func() {
			for _, cl := range closers {
				cl.Close()
			}
		}()
		open := func(fh *multipart.FileHeader) (*service.Upload, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			closers = append(closers, f)
			return &service.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Reader:      f,
			}, nil
		}

		if audios := form.File["audio"]; len(audios) > 0 {
			// At most one audio upload is honored.
			up, err := open(audios[0])
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded audio")
			}
			sub.Audio = up
		}
		for _, fh := range form.File["images"] {
			up, err := open(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded image")
			}
			sub.Images = append(sub.Images, *up)
		}

		ack, err := noteSvc.Submit(c.UserContext(), sub)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(ack)
	})

	// Retrieve a completed note by job id. 404 covers both "unknown id" and
	// "still processing" on purpose.
	api.Get("/notes/:job_id", func(c *fiber.Ctx) error {
		id := c.Params("job_id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		note, err := noteSvc.GetNote(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNoteNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "notes not found or still processing")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(note)
	})

	// Explicit job status. Additive surface: unlike the notes endpoint it
	// distinguishes submitted/processing/completed/failed, and 404s only
	// for ids this process never saw.
	api.Get("/jobs/:job_id/status", func(c *fiber.Ctx) error {
		id := c.Params("job_id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		status, ok := noteSvc.Status(id)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "job not found")
		}
		return c.JSON(fiber.Map{"job_id": id, "status": status})
	})
}
