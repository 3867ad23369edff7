// Package httpapi serves the public landing page and the admin JSON API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/metrics"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/upload"
)

// maxUploadBytes bounds multipart bodies before the quota check runs.
const maxUploadBytes = 64 << 20

// Deps are the collaborators the API is served from.
type Deps struct {
	Store   store.Store
	Files   *files.Registry
	Uploads *upload.Pipeline
	Gate    *auth.Gate
	Metrics *metrics.Metrics // optional
	Logger  *logger.Logger
	Company string
	Now     func() time.Time
}

// Server holds the handlers' dependencies.
type Server struct {
	store    store.Store
	files    *files.Registry
	uploads  *upload.Pipeline
	gate     *auth.Gate
	metrics  *metrics.Metrics
	log      *logger.Logger
	validate *validator.Validate
	company  string
	now      func() time.Time
}

// New builds a Server.
func New(d Deps) *Server {
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	company := d.Company
	if company == "" {
		company = "Site Ledger"
	}
	return &Server{
		store:    d.Store,
		files:    d.Files,
		uploads:  d.Uploads,
		gate:     d.Gate,
		metrics:  d.Metrics,
		log:      logger.OrNop(d.Logger).With("component", "httpapi"),
		validate: newValidator(),
		company:  company,
		now:      now,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.MaxMultipartMemory = maxUploadBytes
	r.SetHTMLTemplate(landingTemplate)

	r.GET("/", s.landing)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	admin := api.Group("/admin", s.requireAuth())
	admin.GET("/session", s.session)

	projects := admin.Group("/projects")
	projects.GET("", s.listProjects)
	projects.POST("", s.createProject)
	projects.GET("/:id", s.getProject)
	projects.PATCH("/:id", s.updateProject)
	projects.DELETE("/:id", s.deleteProject)
	projects.GET("/:id/members", s.projectMembers)

	clients := admin.Group("/clients")
	clients.GET("", s.listClients)
	clients.POST("", s.createClient)
	clients.GET("/:id", s.getClient)
	clients.PATCH("/:id", s.updateClient)
	clients.DELETE("/:id", s.deleteClient)
	clients.PUT("/:id/project", s.assign(model.EntityClient))
	clients.DELETE("/:id/project", s.unassign(model.EntityClient))
	clients.POST("/:id/records", s.addFinancialRecord)
	clients.PATCH("/:id/records/:recordId", s.updateFinancialRecord)
	clients.DELETE("/:id/records/:recordId", s.deleteFinancialRecord)

	labourers := admin.Group("/labourers")
	labourers.GET("", s.listLabourers)
	labourers.POST("", s.createLabourer)
	labourers.GET("/:id", s.getLabourer)
	labourers.PATCH("/:id", s.updateLabourer)
	labourers.DELETE("/:id", s.deleteLabourer)
	labourers.PUT("/:id/project", s.assign(model.EntityLabour))
	labourers.DELETE("/:id/project", s.unassign(model.EntityLabour))
	labourers.POST("/:id/attendance", s.addAttendance)
	labourers.PATCH("/:id/attendance/:recordId", s.updateAttendance)
	labourers.DELETE("/:id/attendance/:recordId", s.deleteAttendance)
	labourers.POST("/:id/payments", s.addPayment)
	labourers.PATCH("/:id/payments/:recordId", s.updatePayment)
	labourers.DELETE("/:id/payments/:recordId", s.deletePayment)

	resources := admin.Group("/resources")
	resources.GET("", s.listResources)
	resources.POST("", s.createResource)
	resources.GET("/:id", s.getResource)
	resources.PATCH("/:id", s.updateResource)
	resources.DELETE("/:id", s.deleteResource)
	resources.PUT("/:id/project", s.assign(model.EntityResource))
	resources.DELETE("/:id/project", s.unassign(model.EntityResource))

	admin.GET("/files", s.listFiles)
	admin.POST("/files", s.uploadFile)
	admin.DELETE("/files/:id", s.deleteFile)
	admin.GET("/storage", s.storage)
	admin.GET("/export/:kind", s.export)
	admin.GET("/consistency", s.consistency)

	return r
}
