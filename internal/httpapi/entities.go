package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/model"
)

// === Projects ===

func (s *Server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GetProjects(c.Request.Context()))
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	p, err := s.store.CreateProject(c.Request.Context(), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	p, ok := s.store.GetProjectByID(c.Request.Context(), c.Param("id"))
	if !ok {
		s.respondError(c, notFound("project", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c *gin.Context) {
	var patch model.ProjectPatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	if patch.Progress.Set {
		if err := s.checkVar("progress", patch.Progress.Value, "gte=0,lte=100"); err != nil {
			s.respondError(c, err)
			return
		}
	}
	p, err := s.store.UpdateProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.store.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) projectMembers(c *gin.Context) {
	ctx := c.Request.Context()
	if _, ok := s.store.GetProjectByID(ctx, c.Param("id")); !ok {
		s.respondError(c, notFound("project", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, s.store.LinkedEntities(ctx, c.Param("id")))
}

// === Clients ===

func (s *Server) listClients(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GetClients(c.Request.Context()))
}

func (s *Server) createClient(c *gin.Context) {
	var req clientRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	client, err := s.store.CreateClient(c.Request.Context(), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) getClient(c *gin.Context) {
	client, ok := s.store.GetClientByID(c.Request.Context(), c.Param("id"))
	if !ok {
		s.respondError(c, notFound("client", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) updateClient(c *gin.Context) {
	var patch model.ClientPatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	if patch.Email.Set && patch.Email.Value != "" {
		if err := s.checkVar("email", patch.Email.Value, "email"); err != nil {
			s.respondError(c, err)
			return
		}
	}
	client, err := s.store.UpdateClient(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) deleteClient(c *gin.Context) {
	if err := s.store.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Labourers ===

func (s *Server) listLabourers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GetLabourers(c.Request.Context()))
}

func (s *Server) createLabourer(c *gin.Context) {
	var req labourerRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	l, err := s.store.CreateLabourer(c.Request.Context(), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (s *Server) getLabourer(c *gin.Context) {
	l, ok := s.store.GetLabourerByID(c.Request.Context(), c.Param("id"))
	if !ok {
		s.respondError(c, notFound("labourer", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) updateLabourer(c *gin.Context) {
	var patch model.LabourerPatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	if patch.Phone.Set {
		if err := s.checkVar("phone", patch.Phone.Value, phoneTag); err != nil {
			s.respondError(c, err)
			return
		}
	}
	l, err := s.store.UpdateLabourer(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) deleteLabourer(c *gin.Context) {
	if err := s.store.DeleteLabourer(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Resources ===

func (s *Server) listResources(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.GetResources(c.Request.Context()))
}

func (s *Server) createResource(c *gin.Context) {
	var req resourceRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	r, err := s.store.CreateResource(c.Request.Context(), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) getResource(c *gin.Context) {
	r, ok := s.store.GetResourceByID(c.Request.Context(), c.Param("id"))
	if !ok {
		s.respondError(c, notFound("resource", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) updateResource(c *gin.Context) {
	var patch model.ResourcePatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	r, err := s.store.UpdateResource(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteResource(c *gin.Context) {
	if err := s.store.DeleteResource(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Assignment ===

func (s *Server) assign(kind model.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req assignRequest
		if err := s.bind(c, &req); err != nil {
			s.respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		if _, ok := s.store.GetProjectByID(ctx, req.ProjectID); !ok {
			s.respondError(c, notFound("project", req.ProjectID))
			return
		}
		if err := s.store.Assign(ctx, kind, c.Param("id"), req.ProjectID); err != nil {
			s.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) unassign(kind model.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Unassign(c.Request.Context(), kind, c.Param("id")); err != nil {
			s.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
