package http

import (
	"net/http"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/shared/paths"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadRequest starts a download either from a record or from a lookup.
// With URL empty, Q is resolved with the filters and Index picks the record.
type DownloadRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Install bool   `json:"install"`

	Q            string   `json:"q"`
	Index        int      `json:"index"`
	Type         string   `json:"type"`
	Ring         string   `json:"ring"`
	Lang         string   `json:"lang"`
	Arch         string   `json:"arch"`
	Kind         []string `json:"kind"`
	Match        string   `json:"match"`
	SkipBlockMap bool     `json:"skip_blockmap"`
}

// InstallRequest installs a file from the downloads directory. Relative
// paths are taken relative to it.
type InstallRequest struct {
	Path string `json:"path" binding:"required"`
}

// StartDownload begins a background download
func (h *Handlers) StartDownload(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file := types.FileDescriptor{Name: req.Name, URL: req.URL}
	if file.URL == "" && req.Q != "" {
		lookup := LookupQuery{
			Type: req.Type, Ring: req.Ring, Lang: req.Lang,
			Arch: req.Arch, Kind: req.Kind, Match: req.Match, SkipBlockMap: req.SkipBlockMap,
		}.Lookup()

		files, err := h.store.Resolve(c.Request.Context(), req.Q, lookup)
		if err != nil {
			h.fail(c, err)
			return
		}
		index := req.Index
		if index == 0 {
			index = 1
		}
		if file, err = store.Pick(files, index); err != nil {
			h.fail(c, err)
			return
		}
	}

	task, err := h.store.StartDownload(c.Request.Context(), file, req.Install)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info("download accepted", zap.String("id", task.ID.String()), zap.String("name", task.File.Name))
	c.JSON(http.StatusAccepted, task)
}

// CurrentDownload returns the latest download task
func (h *Handlers) CurrentDownload(c *gin.Context) {
	task, ok := h.store.CurrentDownload()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no download task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// CancelDownload stops the active download
func (h *Handlers) CancelDownload(c *gin.Context) {
	if err := h.store.CancelDownload(); err != nil {
		h.fail(c, err)
		return
	}

	task, _ := h.store.CurrentDownload()
	c.JSON(http.StatusOK, task)
}

// ListPackages lists packages already downloaded
func (h *Handlers) ListPackages(c *gin.Context) {
	packages, err := h.store.Packages(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packages": packages,
		"count":    len(packages),
	})
}

// Install adds a downloaded package to the host
func (h *Handlers) Install(c *gin.Context) {
	var req InstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := paths.Within(h.store.DownloadDir(), req.Path)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.Install(c.Request.Context(), path); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
	})
}
