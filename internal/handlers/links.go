package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SubmitLinkRequest struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Category string `json:"category" binding:"required"`
}

func (h *Handler) SubmitLink(c *gin.Context) {
	var req SubmitLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.directory.SubmitLink(currentActor(c), req.Name, req.URL, req.Type, req.Category)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "link submitted", "id": link.ID})
}

func (h *Handler) ListLinks(c *gin.Context) {
	links, err := h.directory.ListLinks(currentActor(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *Handler) DeleteLink(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	if err := h.directory.DeleteLink(currentActor(c), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "link deleted"})
}

// ListLinkCategories is the owner-scoped category listing used by the links
// frontend: it includes created_by so clients can offer delete buttons.
func (h *Handler) ListLinkCategories(c *gin.Context) {
	categories, err := h.directory.ListCategoriesWithOwner(currentActor(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) DeleteCategoryByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := h.directory.DeleteCategoryByID(currentActor(c), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
