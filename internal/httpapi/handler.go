package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/auth"
	"studyplanner/internal/calendar"
	"studyplanner/internal/logger"
	"studyplanner/internal/planner"
	"studyplanner/internal/timetable"
)

// Handler exposes the timetable service over HTTP.
type Handler struct {
	svc *timetable.Service
	log *logger.Logger
}

func NewHandler(svc *timetable.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Public profile route", "user": gin.H{"id": auth.Owner(c)}})
}

func (h *Handler) createSubject(c *gin.Context) {
	var req timetable.SubjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	subject, err := h.svc.CreateSubject(c.Request.Context(), auth.Owner(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *Handler) listSubjects(c *gin.Context) {
	subjects, err := h.svc.ListSubjects(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func (h *Handler) savePreferences(c *gin.Context) {
	var req timetable.PreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	prefs, err := h.svc.SavePreferences(c.Request.Context(), auth.Owner(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) getPreferences(c *gin.Context) {
	prefs, err := h.svc.GetPreferences(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) addExclusion(c *gin.Context) {
	var req timetable.ExclusionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ex, err := h.svc.AddExclusion(c.Request.Context(), auth.Owner(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (h *Handler) listExclusions(c *gin.Context) {
	out, err := h.svc.ListExclusions(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createSession(c *gin.Context) {
	var req timetable.SessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	session, err := h.svc.CreateSession(c.Request.Context(), auth.Owner(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.svc.List(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) setCompleted(c *gin.Context) {
	var req struct {
		Completed *bool `json:"completed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	session, err := h.svc.SetCompleted(c.Request.Context(), auth.Owner(c), c.Param("id"), *req.Completed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *Handler) generate(c *gin.Context) {
	slots, err := h.svc.Generate(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": slots})
}

func (h *Handler) saveTimetable(c *gin.Context) {
	var req struct {
		Sessions []planner.SessionSlot `json:"sessions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.svc.Save(c.Request.Context(), auth.Owner(c), req.Sessions)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Timetable sessions saved successfully.",
		"saved":      res.Saved,
		"duplicates": res.Duplicates,
		"skipped":    res.Skipped,
	})
}

func (h *Handler) clearSessions(c *gin.Context) {
	if _, err := h.svc.ClearAll(c.Request.Context(), auth.Owner(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All study sessions cleared."})
}

func (h *Handler) exportTimetable(c *gin.Context) {
	payload, err := h.svc.Export(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+calendar.FileName)
	c.Data(http.StatusOK, calendar.ContentType, payload)
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), auth.Owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
