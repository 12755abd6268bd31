package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC(),
		"service":   "learnpath",
	})
}

func (s *Server) submitProfile(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	p, err := s.svc.Profiles.Submit(c.Request.Context(), currentUser(c), raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": p})
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.svc.Profiles.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (s *Server) generateCourse(c *gin.Context) {
	course, err := s.svc.Courses.Generate(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (s *Server) listCourses(c *gin.Context) {
	courses, err := s.svc.Courses.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (s *Server) getCourse(c *gin.Context) {
	course, err := s.svc.Courses.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (s *Server) completeModule(c *gin.Context) {
	res, err := s.svc.Progress.Complete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progress":        res.Progress,
		"xpEarned":        res.Progress.XPEarned,
		"stats":           res.Stats,
		"leveledUp":       res.LeveledUp,
		"sameDayStreak":   res.SameDayStreak,
		"unlocked":        res.Unlocked,
		"courseCompleted": res.CourseCompleted,
	})
}

func (s *Server) getProgress(c *gin.Context) {
	sum, err := s.svc.Progress.Summary(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": sum.Completed, "stats": sum.Stats})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.svc.Progress.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
