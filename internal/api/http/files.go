package http

import (
	"net/http"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/gin-gonic/gin"
)

// LookupQuery is the query string of the file routes
type LookupQuery struct {
	Q            string   `form:"q"`
	Type         string   `form:"type"`
	Ring         string   `form:"ring"`
	Lang         string   `form:"lang"`
	Arch         string   `form:"arch"`
	Kind         []string `form:"kind"`
	Match        string   `form:"match"`
	SkipBlockMap bool     `form:"skip_blockmap"`
}

// Lookup converts the query into service options
func (q LookupQuery) Lookup() store.Lookup {
	var kinds []string
	for _, k := range q.Kind {
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				kinds = append(kinds, part)
			}
		}
	}
	return store.Lookup{
		Type: q.Type,
		Ring: q.Ring,
		Lang: q.Lang,
		Filter: store.Filter{
			Arch:         q.Arch,
			Kinds:        kinds,
			Match:        q.Match,
			SkipBlockMap: q.SkipBlockMap,
		},
	}
}

// ListFiles resolves a product and returns its records
func (h *Handlers) ListFiles(c *gin.Context) {
	var q LookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := h.store.Resolve(c.Request.Context(), q.Q, q.Lookup())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}

// FilesPage returns the sanitized resolver page for a product
func (h *Handlers) FilesPage(c *gin.Context) {
	var q LookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.store.Page(c.Request.Context(), q.Q, q.Lookup())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
