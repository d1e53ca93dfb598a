package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/queue"
)

type markRequest struct {
	StudentID int64      `json:"student_id"`
	Date      model.Date `json:"date"`
	Status    string     `json:"status"`
}

func (s *Server) markOne(c *gin.Context) {
	var req markRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := s.Ledger.MarkOne(ctx, req.StudentID, req.Date, req.Status); err != nil {
		fail(c, err)
		return
	}
	s.afterWrite(ctx, queue.SheetSaved{Date: req.Date, Students: []int64{req.StudentID}})
	c.JSON(http.StatusOK, gin.H{"message": "Saved"})
}

func (s *Server) historyJoined(c *gin.Context) {
	var (
		f   attendance.JoinedFilter
		err error
	)
	if f.StudentID, err = queryID(c, "student_id"); err != nil {
		fail(c, err)
		return
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		fail(c, err)
		return
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		fail(c, err)
		return
	}
	rows, err := s.Ledger.HistoryJoined(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) periodwise(c *gin.Context) {
	if c.Query("class_id") == "" || c.Query("date") == "" {
		badRequest(c, "class_id and date are required")
		return
	}
	classID, err := queryID(c, "class_id")
	if err != nil {
		fail(c, err)
		return
	}
	date, err := queryDate(c, "date")
	if err != nil {
		fail(c, err)
		return
	}
	marks, err := s.Ledger.Periodwise(c.Request.Context(), *classID, *date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, marks)
}

func (s *Server) markBatch(c *gin.Context) {
	var sheet model.Sheet
	if !bindJSON(c, &sheet) {
		return
	}
	ctx := c.Request.Context()
	res, err := s.Ledger.MarkBatch(ctx, sheet)
	if err != nil {
		fail(c, err)
		return
	}
	if len(res.Students) > 0 {
		s.afterWrite(ctx, queue.SheetSaved{ClassID: sheet.ClassID, Date: sheet.Date, Students: res.Students})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved", "written": res.Written, "skipped": res.Skipped})
}

// afterWrite drops stale summaries and asks the worker to re-warm them.
// The marks are already committed, so failures here are only logged.
func (s *Server) afterWrite(ctx context.Context, ev queue.SheetSaved) {
	if s.Summaries != nil {
		if err := s.Summaries.Invalidate(ctx, ev.Students...); err != nil {
			logger.Error.Printf("invalidate summaries %v: %v", ev.Students, err)
		}
	}
	if s.Queue == nil {
		return
	}
	msg, err := queue.NewSheetSaved(ev)
	if err != nil {
		logger.Error.Printf("build sheet.saved: %v", err)
		return
	}
	if err := s.Queue.Publish(ctx, msg); err != nil {
		logger.Error.Printf("queue publish failed: %v", err)
	}
}

func (s *Server) studentHistory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var f attendance.HistoryFilter
	if f.From, err = queryDate(c, "from"); err != nil {
		fail(c, err)
		return
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		fail(c, err)
		return
	}
	rows, err := s.Ledger.History(c.Request.Context(), id, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) studentSummary(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	sum, err := s.Summaries.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) changePassword(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := s.Roster.ChangePassword(c.Request.Context(), id, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
