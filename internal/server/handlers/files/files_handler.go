package files

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openmined/fileagent/internal/server/acl"
	"github.com/openmined/fileagent/internal/server/files"
	"github.com/openmined/fileagent/internal/server/handlers/api"
	"github.com/openmined/fileagent/internal/server/middlewares"
)

type FilesHandler struct {
	files   *files.Service
	engine  *acl.Engine
	enforce bool
}

// NewFilesHandler wires the file service and, when enforce is set, the acl
// engine. Path safety always applies; the acl verdict is an independent,
// additional gate.
func NewFilesHandler(svc *files.Service, engine *acl.Engine, enforce bool) *FilesHandler {
	return &FilesHandler{
		files:   svc,
		engine:  engine,
		enforce: enforce,
	}
}

// List returns the entry names of a directory, or the file's own absolute
// path when the target is a file.
func (h *FilesHandler) List(ctx *gin.Context) {
	path := ctx.Param("path")
	if !h.authorize(ctx, path, acl.ActionRead) {
		return
	}

	listing, err := h.files.List(path)
	if err != nil {
		abortWithFilesError(ctx, err)
		return
	}
	api.OK(ctx, "file listing retrieved successfully", listing)
}

// Download streams a single file. Directory download is not supported.
func (h *FilesHandler) Download(ctx *gin.Context) {
	path := ctx.Param("path")
	if !h.authorize(ctx, path, acl.ActionRead) {
		return
	}

	full, err := h.files.Open(path)
	if err != nil {
		abortWithFilesError(ctx, err)
		return
	}
	ctx.File(full)
}

// Upload stores a multipart file into an existing directory under the root.
func (h *FilesHandler) Upload(ctx *gin.Context) {
	path := ctx.Param("path")
	if !h.authorize(ctx, path, acl.ActionWrite) {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	filename := file.Filename
	if filename == "" {
		filename = uuid.New().String()
	}

	src, err := file.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}
	defer src.Close()

	saved, err := h.files.Save(path, filename, src)
	if err != nil {
		abortWithFilesError(ctx, err)
		return
	}

	api.OK(ctx, "file uploaded successfully", &UploadResponse{
		Path: saved,
		Size: file.Size,
	})
}

// authorize runs the acl check for the authenticated subject acting as
// itself. Returns false after writing the error response if the request may
// not proceed.
func (h *FilesHandler) authorize(ctx *gin.Context, path string, action acl.Action) bool {
	if !h.enforce {
		return true
	}

	subject := middlewares.Subject(ctx)
	if subject == "" {
		api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAuthInvalidCredentials,
			errors.New("no authenticated subject"))
		return false
	}

	authorized, err := h.engine.IsAuthorized(ctx.Request.Context(), &acl.Request{
		Subject: subject,
		User:    acl.SelfUser,
		Action:  action,
		Path:    path,
	})
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeACLCheckFailed, err)
		return false
	}
	if !authorized {
		api.AbortWithError(ctx, http.StatusForbidden, api.CodeAccessDenied,
			errors.New("not authorized for "+action.String()+" on "+path))
		return false
	}
	return true
}

func abortWithFilesError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, files.ErrNotFound):
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeFileNotFound, err)
	case errors.Is(err, files.ErrOutsideRoot):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFileOutsideRoot, err)
	case errors.Is(err, files.ErrWrongKind):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFileWrongKind, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeFileOpFailed, err)
	}
}
