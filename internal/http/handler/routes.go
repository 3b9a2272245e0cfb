package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfdrop/internal/http/middleware"
	"pdfdrop/internal/service"
)

// RegisterRoutes attaches the API routes to the provided Fiber app.
// Upload is gated behind the admin secret; listing and download are
// public by design. metrics may be nil (tests).
func RegisterRoutes(app *fiber.App, adminSecret string, svc service.DocumentService, metrics *middleware.PrometheusMiddleware) {
	api := app.Group("/api")

	api.Post("/upload", middleware.RequireAdmin(adminSecret), UploadDocument(svc, metrics))
	api.Get("/files", ListFiles(svc))
	api.Get("/files/:id", DownloadFile(svc))
	api.Get("/health", Health())

	// Serve OpenAPI spec and Swagger UI
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
}
