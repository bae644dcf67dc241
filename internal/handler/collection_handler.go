package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"taka/internal/domain"
	"taka/internal/middleware"
	"taka/internal/models"
	"taka/internal/repository"
	"taka/internal/service"
	"taka/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type CollectionHandler struct {
	repo    *repository.CollectionRepository
	rewards *service.RewardsService
	cloud   cloudinary.Client
}

func NewCollectionHandler(repo *repository.CollectionRepository, rewards *service.RewardsService, cloud cloudinary.Client) *CollectionHandler {
	return &CollectionHandler{repo: repo, rewards: rewards, cloud: cloud}
}

type materialInput struct {
	Material string  `json:"material" binding:"required"`
	WeightKG float64 `json:"weight_kg" binding:"required,gt=0"`
}

type createCollectionRequest struct {
	Materials []materialInput `json:"materials" binding:"required,min=1,dive"`
	Notes     string          `json:"notes"`
}

// Create records a new drop-off for the authenticated collector.
// It stays pending until an admin approves it.
func (h *CollectionHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	materials := make([]models.CollectionMaterial, 0, len(req.Materials))
	total := decimal.Zero
	for _, m := range req.Materials {
		name := strings.ToLower(strings.TrimSpace(m.Material))
		if h.rewards.RateFor(name) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown material: " + m.Material})
			return
		}
		w := decimal.NewFromFloat(m.WeightKG)
		total = total.Add(w)
		materials = append(materials, models.CollectionMaterial{
			Material: name,
			WeightKG: w,
		})
	}
	col := &models.Collection{
		ID:            uuid.New().String(),
		CollectorID:   userID,
		TotalWeightKG: total,
		Status:        domain.CollectionStatusPending,
		Notes:         req.Notes,
	}
	if err := h.repo.Create(col, materials); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create collection"})
		return
	}
	created, err := h.repo.GetByID(col.ID)
	if err != nil {
		c.JSON(http.StatusCreated, gin.H{"collection": col})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": created})
}

// ListMine returns the authenticated collector's collections.
func (h *CollectionHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, err := h.repo.ListByCollector(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": list})
}

// Get returns one collection with photos and materials. Collectors can
// only read their own.
func (h *CollectionHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	col, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	role, _ := c.Get("role")
	if col.CollectorID != userID && role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

// UploadPhoto attaches an evidence photo to a pending collection.
func (h *CollectionHandler) UploadPhoto(c *gin.Context) {
	userID := middleware.GetUserID(c)
	col, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	if col.CollectorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if col.Status != domain.CollectionStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection already reviewed"})
		return
	}
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "taka/collections/" + col.ID
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	photo := &models.CollectionPhoto{
		CollectionID: col.ID,
		URL:          url,
		PublicID:     folder + "/" + publicID,
	}
	if err := h.repo.AddPhoto(photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save photo"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo": photo})
}
