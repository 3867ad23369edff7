package httpapi

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/model"
)

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	sess, err := s.gate.Login(c.Request.Context(), req.Username, req.Password)
	if s.metrics != nil {
		s.metrics.ObserveLogin(err == nil)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.gate.Logout(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c))
}

var landingTemplate = template.Must(template.New("landing").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Company}}</title></head>
<body>
<h1>{{.Company}}</h1>
<p>{{.Total}} projects, {{.Ongoing}} in progress.</p>
<ul>
{{- range .Projects}}
<li>{{.Name}}{{if .Location}} ({{.Location}}){{end}}: {{.Status}}, {{.Progress}}%</li>
{{- end}}
</ul>
{{- if .LoggedIn}}
<p><a href="/api/admin/session">Admin session active</a></p>
{{- end}}
</body>
</html>
`))

type landingData struct {
	Company  string
	Total    int
	Ongoing  int
	Projects []model.Project
	LoggedIn bool
}

// landing is the public page. It lists projects without any member or
// money details.
func (s *Server) landing(c *gin.Context) {
	ctx := c.Request.Context()
	projects := s.store.GetProjects(ctx)

	data := landingData{Company: s.company, Total: len(projects), Projects: projects}
	for _, p := range projects {
		if p.Status == model.ProjectOngoing {
			data.Ongoing++
		}
	}
	if _, err := s.gate.Current(ctx); err == nil {
		data.LoggedIn = true
	} else if !errors.Is(err, model.ErrNotAuthenticated) {
		s.log.Warn("reading login flag", "error", err)
	}
	c.HTML(http.StatusOK, "landing", data)
}
