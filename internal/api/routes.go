package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spigell/cv-screener/internal/recruiting"
)

// RegisterRoutes registers all routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/health", s.HandleHealth)

	rest := e.Group("/api")

	folders := rest.Group("/folders")
	folders.GET("", s.HandleListFolders)
	folders.POST("", s.HandleCreateFolder)
	folders.PATCH("/:id", s.HandleRenameFolder)
	folders.POST("/:id/move", s.HandleMoveFolder)
	folders.DELETE("/:id", s.HandleDeleteFolder)

	candidates := rest.Group("/candidates")
	candidates.GET("", s.HandleListCandidates)
	candidates.POST("/move", s.HandleMoveCandidates)
	candidates.POST("/delete", s.HandleDeleteCandidates)
	candidates.GET("/:id", s.HandleGetCandidate)
	candidates.GET("/:id/file", s.HandleCandidateFile)
	candidates.PATCH("/:id", s.HandleUpdateCandidate)
	candidates.DELETE("/:id", s.HandleDeleteCandidate)

	postings := rest.Group("/postings")
	postings.GET("", s.HandleListPostings)
	postings.POST("", s.HandleCreatePosting)
	postings.POST("/draft", s.HandleDraftPosting)
	postings.GET("/:id", s.HandleGetPosting)
	postings.PUT("/:id", s.HandleUpdatePosting)
	postings.GET("/:id/link", s.HandlePostingLink)
	postings.GET("/:id/evaluations", s.HandleListEvaluations)
	postings.POST("/:id/assign", s.HandleAssign)
	postings.POST("/:id/candidates", s.HandleUploadToPosting)
	postings.POST("/:id/process", s.HandleProcessPosting)

	rest.PATCH("/evaluations/:id", s.HandleUpdateEvaluation)

	q := rest.Group("/queue")
	q.GET("", s.HandleListQueue)
	q.POST("", s.HandleAddToQueue)
	q.POST("/process", s.HandleProcessQueue)
	q.DELETE("", s.HandleClearQueue)

	// Public application form; the body limit leaves room for multipart overhead.
	apply := e.Group("/apply", middleware.BodyLimit("6M"))
	apply.GET("/:postingID", s.HandleGetApplication)
	apply.POST("/:postingID", s.HandleApply)
}

// applyPath is the public application path of a posting.
func applyPath(p *recruiting.JobPosting) string {
	return "/apply/" + strconv.FormatInt(p.ID, 10)
}
