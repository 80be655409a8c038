package handlers

import (
	"net/http"

	noteRepo "notewise/database/repository/note"
	"notewise/models"
	noteService "notewise/services/note"
	"notewise/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	Service noteService.NoteService
}

func NewNoteHandler(service noteService.NoteService) *NoteHandler {
	return &NoteHandler{Service: service}
}

func (h *NoteHandler) CreateNoteHandler(c *gin.Context) {
	var input noteService.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	note, err := h.Service.CreateNote(c.Request.Context(), input)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create note", err.Error())
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) UpdateNoteHandler(c *gin.Context) {
	var input noteService.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	note, err := h.Service.UpdateNote(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update note", err.Error())
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) GetNoteHandler(c *gin.Context) {
	note, err := h.Service.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Note not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) ListNotesHandler(c *gin.Context) {
	filter := noteRepo.ListFilter{
		CategoryID:    c.Query("categoryId"),
		FavoritesOnly: c.Query("favorites") == "true",
		Search:        c.Query("q"),
		Trash:         c.Query("trash") == "true",
		Sort:          c.Query("sort"),
	}

	notes, err := h.Service.ListNotes(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list notes", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandler) TrashNoteHandler(c *gin.Context) {
	if err := h.Service.TrashNote(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to trash note", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note moved to trash."})
}

func (h *NoteHandler) RestoreNoteHandler(c *gin.Context) {
	if err := h.Service.RestoreNote(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to restore note", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note restored."})
}

func (h *NoteHandler) PurgeNoteHandler(c *gin.Context) {
	if err := h.Service.PurgeNote(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete note", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted permanently."})
}

func (h *NoteHandler) EmptyTrashHandler(c *gin.Context) {
	purged, err := h.Service.EmptyTrash(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to empty trash", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trash emptied.", "purged": purged})
}

func (h *NoteHandler) RenderNoteHandler(c *gin.Context) {
	html, err := h.Service.RenderNoteHTML(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to render note", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *NoteHandler) CreateCategoryHandler(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	cat, err := h.Service.CreateCategory(c.Request.Context(), body.Name)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create category", err.Error())
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *NoteHandler) ListCategoriesHandler(c *gin.Context) {
	cats, err := h.Service.ListCategories(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list categories", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *NoteHandler) DeleteCategoryHandler(c *gin.Context) {
	if err := h.Service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete category", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted."})
}

// SaveTemplateHandler creates or updates a reusable note template. A body
// without an id creates a new one.
func (h *NoteHandler) SaveTemplateHandler(c *gin.Context) {
	var tpl models.Template
	if err := c.ShouldBindJSON(&tpl); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	saved, err := h.Service.SaveTemplate(c.Request.Context(), tpl)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to save template", err.Error())
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *NoteHandler) ListTemplatesHandler(c *gin.Context) {
	tpls, err := h.Service.ListTemplates(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list templates", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": tpls})
}

func (h *NoteHandler) DeleteTemplateHandler(c *gin.Context) {
	if err := h.Service.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete template", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted."})
}

func (h *NoteHandler) ExportHandler(c *gin.Context) {
	archive, err := h.Service.Export(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to export notes", err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="notewise-export.json"`)
	c.JSON(http.StatusOK, archive)
}

func (h *NoteHandler) ImportHandler(c *gin.Context) {
	var archive models.Archive
	if err := c.ShouldBindJSON(&archive); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid archive", err.Error())
		return
	}

	imported, err := h.Service.Import(c.Request.Context(), &archive)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to import notes", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
