package handlers

import (
	"net/http"

	"notewise/services/reminder"
	"notewise/utils"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	Service reminder.ReminderService
}

func NewReminderHandler(service reminder.ReminderService) *ReminderHandler {
	return &ReminderHandler{Service: service}
}

// SetReminderHandler creates, updates or deletes the push schedule for a
// note. A request without a rule (or whose rule has no future occurrence)
// removes the record.
func (h *ReminderHandler) SetReminderHandler(c *gin.Context) {
	var req reminder.ArmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.NoteID == "" || req.Token == "" {
		utils.JSONError(c, http.StatusBadRequest, "Bad Request", "Missing noteId or token.")
		return
	}

	if err := h.Service.Arm(c.Request.Context(), req); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to set reminder", err.Error())
		return
	}

	if req.Rule != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Reminder set successfully."})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully."})
	}
}

// DeleteReminderHandler removes the push schedule for a note.
func (h *ReminderHandler) DeleteReminderHandler(c *gin.Context) {
	noteID := c.Param("noteId")
	if noteID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Bad Request", "Missing noteId.")
		return
	}

	if err := h.Service.Disarm(c.Request.Context(), noteID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete reminder", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully."})
}
