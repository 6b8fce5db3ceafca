package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DictionaryReloader swaps in a freshly read correction dictionary.
type DictionaryReloader interface {
	Reload() (string, error)
}

// CatalogInvalidator drops cached catalog snapshots.
type CatalogInvalidator interface {
	Invalidate()
}

type DictionaryHandler struct {
	Dictionary DictionaryReloader
	Catalogs   CatalogInvalidator
	Logger     *zap.Logger
}

func NewDictionaryHandler(dict DictionaryReloader, catalogs CatalogInvalidator, logger *zap.Logger) *DictionaryHandler {
	return &DictionaryHandler{Dictionary: dict, Catalogs: catalogs, Logger: logger}
}

// ReloadDictionaryHandler re-reads the dictionary. Snapshots carry its
// synonyms, so they are rebuilt on next use.
func (h *DictionaryHandler) ReloadDictionaryHandler(c *gin.Context) {
	version, err := h.Dictionary.Reload()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.Catalogs.Invalidate()
	h.Logger.Info("Dictionary reloaded via API", zap.String("version", version))
	c.JSON(http.StatusOK, gin.H{"version": version})
}
