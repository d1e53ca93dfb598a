package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-tracker/internal/auth"
)

type teacherLoginRequest struct {
	EmpID    string `json:"emp_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type studentLoginRequest struct {
	AdmissionNo string `json:"admission_no" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) teacherLogin(c *gin.Context) {
	var req teacherLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := s.Roster.AuthenticateTeacher(c.Request.Context(), req.EmpID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	s.issue(c, strconv.FormatInt(t.ID, 10), auth.RoleTeacher, "teacher", t)
}

func (s *Server) studentLogin(c *gin.Context) {
	var req studentLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := s.Roster.AuthenticateStudent(c.Request.Context(), req.AdmissionNo, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	s.issue(c, strconv.FormatInt(st.ID, 10), auth.RoleStudent, "student", st)
}

func (s *Server) issue(c *gin.Context, subject, role, field string, who any) {
	tokens, err := s.Signer.Issue(subject, role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":          role,
		field:           who,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, claims, err := s.Signer.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":          claims.Role,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}
