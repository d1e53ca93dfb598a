package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-tracker/internal/model"
)

func (s *Server) createStudent(c *gin.Context) {
	var in model.StudentInput
	if !bindJSON(c, &in) {
		return
	}
	st, err := s.Roster.CreateStudent(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Student created", "student": st})
}

func (s *Server) listStudents(c *gin.Context) {
	classID, err := queryID(c, "class_id")
	if err != nil {
		fail(c, err)
		return
	}
	students, err := s.Roster.ListStudents(c.Request.Context(), classID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (s *Server) getStudent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	st, err := s.Roster.GetStudent(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) updateStudent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var in model.StudentInput
	if !bindJSON(c, &in) {
		return
	}
	st, err := s.Roster.UpdateStudent(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated", "student": st})
}

func (s *Server) createClass(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	class, err := s.Roster.CreateClass(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Class created", "class": class})
}

func (s *Server) listClasses(c *gin.Context) {
	classes, err := s.Roster.ListClasses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (s *Server) listPeriods(c *gin.Context) {
	periods, err := s.Roster.ListPeriods(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}
