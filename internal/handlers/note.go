package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/services"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (nh *NoteHandler) Create(c *gin.Context) {
	var body struct {
		CourseID   string `json:"course_id"`
		FolderID   string `json:"folder_id"`
		Title      string `json:"title"`
		StorageKey string `json:"storage_key"`
		PageCount  int    `json:"page_count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	courseID, err := uuid.Parse(body.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id must be a valid uuid"})
		return
	}
	var folderID *uuid.UUID
	if body.FolderID != "" {
		parsed, err := uuid.Parse(body.FolderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id must be a valid uuid"})
			return
		}
		folderID = &parsed
	}
	note, err := nh.noteService.CreateNote(c.Request.Context(), courseID, folderID, body.Title, body.StorageKey, body.PageCount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

func (nh *NoteHandler) GetByCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course id must be a valid uuid"})
		return
	}
	notes, err := nh.noteService.GetCourseNotes(c.Request.Context(), courseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (nh *NoteHandler) Get(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note id must be a valid uuid"})
		return
	}
	note, err := nh.noteService.GetNote(c.Request.Context(), noteID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

func (nh *NoteHandler) Delete(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note id must be a valid uuid"})
		return
	}
	if err := nh.noteService.DeleteNote(c.Request.Context(), noteID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (nh *NoteHandler) Complete(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note id must be a valid uuid"})
		return
	}
	if err := nh.noteService.MarkCompleted(c.Request.Context(), noteID, time.Now().UTC()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
