package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/csvexport"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/upload"
)

func (s *Server) listFiles(c *gin.Context) {
	kind := c.Query("type")
	if kind == "" {
		c.JSON(http.StatusOK, s.files.Files())
		return
	}
	c.JSON(http.StatusOK, s.files.FilesByLink(model.EntityType(kind), c.Query("id"), c.Query("record_id")))
}

// uploadFile accepts a multipart "file" part plus optional link_type,
// link_id and record_id fields.
func (s *Server) uploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, fmt.Errorf("reading file part: %v: %w", err, model.ErrValidation))
		return
	}

	var link *model.FileLink
	if kind := c.PostForm("link_type"); kind != "" {
		if err := s.checkVar("link_type", kind, "oneof=client labour resource project"); err != nil {
			s.respondError(c, err)
			return
		}
		if err := s.checkVar("link_id", c.PostForm("link_id"), "required"); err != nil {
			s.respondError(c, err)
			return
		}
		link = &model.FileLink{
			Type:     model.EntityType(kind),
			ID:       c.PostForm("link_id"),
			RecordID: c.PostForm("record_id"),
		}
	}

	f, err := fh.Open()
	if err != nil {
		s.respondError(c, fmt.Errorf("opening upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, fmt.Errorf("reading upload: %w", err))
		return
	}

	// Browsers and curl label unknown parts as octet-stream; sniff those.
	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "application/octet-stream" {
		mediaType = ""
	}

	stored, err := s.uploads.Upload(c.Request.Context(), upload.Request{
		Name:     fh.Filename,
		Type:     mediaType,
		Data:     data,
		LinkedTo: link,
	})
	if s.metrics != nil {
		s.metrics.ObserveUpload(err)
	}
	if err != nil {
		if upload.IsUploadFailure(err) {
			s.log.Warn("upload rejected", "name", fh.Filename, "size", len(data), "error", err)
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (s *Server) deleteFile(c *gin.Context) {
	if err := s.files.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type storageResponse struct {
	quota.Usage
	Percent        float64 `json:"percent"`
	UsedLabel      string  `json:"used_label"`
	TotalLabel     string  `json:"total_label"`
	RemainingLabel string  `json:"remaining_label"`
}

func (s *Server) storage(c *gin.Context) {
	u := s.uploads.Usage()
	c.JSON(http.StatusOK, storageResponse{
		Usage:          u,
		Percent:        u.Percent(),
		UsedLabel:      quota.FormatBytes(u.Used),
		TotalLabel:     quota.FormatBytes(u.Total),
		RemainingLabel: quota.FormatBytes(u.Remaining),
	})
}

func (s *Server) export(c *gin.Context) {
	t, err := csvexport.Build(c.Param("kind"), s.store.Snapshot(c.Request.Context()), s.files.Files())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvexport.Filename(t.Name, s.now())))
	c.Status(http.StatusOK)
	if err := csvexport.WriteTable(c.Writer, t); err != nil {
		s.log.Error("writing export", "kind", c.Param("kind"), "error", err)
	}
}

func (s *Server) consistency(c *gin.Context) {
	errs := s.store.CheckConsistency(c.Request.Context())
	problems := make([]string, 0, len(errs))
	for _, err := range errs {
		problems = append(problems, err.Error())
	}
	c.JSON(http.StatusOK, gin.H{"ok": len(problems) == 0, "problems": problems})
}
