package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/agrokadry/agrojob-core/internal/adapters/http/middleware"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/company"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
)

// NewRouter は全ハンドラを /api/v1 配下へ登録したルーターを構築します。
func NewRouter(
	applications application.UseCase,
	vacancies vacancy.UseCase,
	companies company.UseCase,
	resumes resume.UseCase,
	logger zerolog.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	NewApplicationHandler(applications).Register(api)
	NewVacancyHandler(vacancies).Register(api)
	NewCompanyHandler(companies).Register(api)
	NewResumeHandler(resumes).Register(api)

	var handler http.Handler = router
	handler = middleware.IdentityMiddleware(handler)
	handler = middleware.LoggingMiddleware(logger)(handler)
	return handler
}
