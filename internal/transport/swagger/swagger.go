package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const DefaultSpecPath = "./api/openapi.yml"

// Handler serves Swagger UI pointed at the spec served by SpecHandler.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}

// SpecHandler serves the OpenAPI document from path.
func SpecHandler(path string) http.HandlerFunc {
	if path == "" {
		path = DefaultSpecPath
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, path)
	}
}
