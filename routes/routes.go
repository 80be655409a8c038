package routes

import (
	"net/http"
	"time"

	"notewise/handlers"
	"notewise/middleware"
	"notewise/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the HTTP handlers wired in main.
type HandlerBundle struct {
	Note     *handlers.NoteHandler
	Reminder *handlers.ReminderHandler
	Device   *handlers.DeviceHandler
}

// RegisterNoteRoutes registers note and category endpoints.
func RegisterNoteRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/notes")
	{
		// All note content sits behind the unlock session.
		api.Use(middleware.DeviceAuthMiddleware())
		api.POST("", hb.Note.CreateNoteHandler)
		api.GET("", hb.Note.ListNotesHandler)
		api.GET("/:id", hb.Note.GetNoteHandler)
		api.PUT("/:id", hb.Note.UpdateNoteHandler)
		api.GET("/:id/html", hb.Note.RenderNoteHandler)
		api.DELETE("/:id", hb.Note.TrashNoteHandler)
		api.POST("/:id/restore", hb.Note.RestoreNoteHandler)
		api.DELETE("/:id/purge", hb.Note.PurgeNoteHandler)
	}

	// Archive lives on its own prefix: gin rejects static segments that
	// shadow the /:id wildcard above.
	archive := r.Group("/api/archive")
	{
		archive.Use(middleware.DeviceAuthMiddleware())
		archive.GET("", hb.Note.ExportHandler)
		archive.POST("", hb.Note.ImportHandler)
	}

	// Emptying the trash removes every soft-deleted note at once.
	trash := r.Group("/api/trash")
	{
		trash.Use(middleware.DeviceAuthMiddleware())
		trash.DELETE("", hb.Note.EmptyTrashHandler)
	}

	cat := r.Group("/api/categories")
	{
		cat.Use(middleware.DeviceAuthMiddleware())
		cat.POST("", hb.Note.CreateCategoryHandler)
		cat.GET("", hb.Note.ListCategoriesHandler)
		cat.DELETE("/:id", hb.Note.DeleteCategoryHandler)
	}

	tpl := r.Group("/api/templates")
	{
		tpl.Use(middleware.DeviceAuthMiddleware())
		tpl.POST("", hb.Note.SaveTemplateHandler)
		tpl.GET("", hb.Note.ListTemplatesHandler)
		tpl.DELETE("/:id", hb.Note.DeleteTemplateHandler)
	}
}

// RegisterReminderRoutes registers the push-schedule endpoints the web client
// calls when a note's reminder is saved or removed.
func RegisterReminderRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/reminders")
	{
		api.POST("", hb.Reminder.SetReminderHandler)
		api.DELETE("/:noteId", hb.Reminder.DeleteReminderHandler)
	}
}

// RegisterDeviceRoutes registers device registration and notebook lock endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.POST("/register", hb.Device.RegisterDeviceHandler)
		api.POST("/unlock", hb.Device.UnlockHandler)

		protected := api.Group("")
		protected.Use(middleware.DeviceAuthMiddleware())
		protected.POST("/pin", hb.Device.SetPINHandler)
		protected.DELETE("", hb.Device.DeregisterDeviceHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// CORSMiddleware allows the web client to call the API from any origin.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Device-ID"},
		MaxAge:          time.Hour,
	})
}
