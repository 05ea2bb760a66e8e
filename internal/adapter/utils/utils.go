package utils

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"

	_ "github.com/svenkata/TabChatAPI/cmd/api/docs"
)

type RouterClient struct {
	Router *chi.Mux
}

var routerOnce sync.Once
var sharedRouter *chi.Mux

// GetRouter returns the process-wide chi router with the swagger UI and the
// prometheus scrape endpoint already mounted.
func GetRouter() RouterClient {
	routerOnce.Do(func() {
		sharedRouter = chi.NewRouter()
		mountSwagger(sharedRouter)
		sharedRouter.Handle("/metrics", promhttp.Handler())
	})
	return RouterClient{Router: sharedRouter}
}

func mountSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

func GetNewUUID() string {
	return uuid.New().String()
}
