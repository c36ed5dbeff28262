package transporthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newssentiment/docs"
)

const openAPIPath = "/swagger/openapi.yaml"

// The API is read-only, so "Try it out" is limited to GET.
var swaggerPage = []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>News Sentiment API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.17.14/swagger-ui.css" />
  <style>body { margin: 0; }</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.17.14/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '` + openAPIPath + `',
      dom_id: '#swagger-ui',
      supportedSubmitMethods: ['get'],
      displayRequestDuration: true,
      defaultModelsExpandDepth: 0
    });
  </script>
</body>
</html>`)

// mountDocs serves the Swagger UI and the embedded OpenAPI document.
func mountDocs(r chi.Router) {
	page := serveStatic("text/html; charset=utf-8", swaggerPage)
	r.Get("/swagger", page)
	r.Get("/swagger/", page)
	r.Get(openAPIPath, serveStatic("application/yaml", docs.OpenAPISpec))
}

func serveStatic(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
