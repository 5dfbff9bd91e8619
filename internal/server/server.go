package server

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ByteBlast1/KanFlow/internal/config"
	"github.com/ByteBlast1/KanFlow/internal/service"
)

// HealthChecker reports the state of the snapshot backend.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	cfg       *config.Config
	boards    service.BoardService
	dashboard service.DashboardService
	auth      service.AuthService
	health    HealthChecker
	validate  *validator.Validate
}

func NewServer(cfg *config.Config, boards service.BoardService, dashboard service.DashboardService, auth service.AuthService, health HealthChecker) *http.Server {
	appServer := &Server{
		cfg:       cfg,
		boards:    boards,
		dashboard: dashboard,
		auth:      auth,
		health:    health,
		validate:  newValidator(),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
