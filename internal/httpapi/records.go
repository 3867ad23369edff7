package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/model"
)

func (s *Server) addFinancialRecord(c *gin.Context) {
	var req financialRecordRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.AddFinancialRecord(c.Request.Context(), c.Param("id"), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updateFinancialRecord(c *gin.Context) {
	var patch model.FinancialRecordPatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.UpdateFinancialRecord(c.Request.Context(), c.Param("id"), c.Param("recordId"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteFinancialRecord(c *gin.Context) {
	if err := s.store.DeleteFinancialRecord(c.Request.Context(), c.Param("id"), c.Param("recordId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.AddAttendance(c.Request.Context(), c.Param("id"), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updateAttendance(c *gin.Context) {
	var patch model.AttendancePatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.UpdateAttendance(c.Request.Context(), c.Param("id"), c.Param("recordId"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteAttendance(c *gin.Context) {
	if err := s.store.DeleteAttendance(c.Request.Context(), c.Param("id"), c.Param("recordId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addPayment(c *gin.Context) {
	var req paymentRequest
	if err := s.bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.AddPayment(c.Request.Context(), c.Param("id"), req.model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updatePayment(c *gin.Context) {
	var patch model.LabourPaymentPatch
	if err := decode(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	rec, err := s.store.UpdatePayment(c.Request.Context(), c.Param("id"), c.Param("recordId"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deletePayment(c *gin.Context) {
	if err := s.store.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("recordId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
