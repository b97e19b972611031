package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nontonanime/api/internal/client"
	"github.com/nontonanime/api/internal/models"
)

// NotFoundMessage is the error of the envelope returned for unknown routes.
const NotFoundMessage = "endpoint not found"

type handler struct {
	client  client.Client
	port    int
	started time.Time
}

// IndexResponse describes the API at its root
type IndexResponse struct {
	Message       string            `json:"message"`
	Endpoints     map[string]string `json:"endpoints"`
	ScraperSource string            `json:"scraper_source"`
}

func (h *handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Message: "Welcome to the NontonAnimeID Scraper API",
		Endpoints: map[string]string{
			"GET /api/home":                     "Get latest anime and featured data",
			"GET /api/search?q=search_term":     "Search for anime by title",
			"GET /api/detail?url=anime_url":     "Get detailed information about an anime",
			"GET /api/download?url=episode_url": "Get download links for an episode",
			"GET /health":                       "Health check with server specs",
		},
		ScraperSource: h.client.BaseURL(),
	})
}

func (h *handler) home(c *gin.Context) {
	writeEnvelope(c, h.client.Home(c.Request.Context()))
}

func (h *handler) search(c *gin.Context) {
	writeEnvelope(c, h.client.Search(c.Request.Context(), c.Query("q")))
}

func (h *handler) detail(c *gin.Context) {
	writeEnvelope(c, h.client.Detail(c.Request.Context(), c.Query("url")))
}

func (h *handler) download(c *gin.Context) {
	writeEnvelope(c, h.client.Download(c.Request.Context(), c.Query("url")))
}

func (h *handler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.Fail[any](http.StatusNotFound, NotFoundMessage, ""))
}

// writeEnvelope answers with env, using its code as status. Server-side failures are attached
// to the gin context so the error reporting middleware sees them.
func writeEnvelope[T any](c *gin.Context, env models.Envelope[T]) {
	if env.Code >= http.StatusInternalServerError {
		cause := env.Error
		if env.Details != "" {
			cause += ": " + env.Details
		}
		_ = c.Error(errors.New(cause))
	}
	c.PureJSON(env.Code, env)
}
