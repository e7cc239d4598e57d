package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"essaim/app/database"
	"essaim/app/scheduler"
)

const (
	defaultOpportunityLimit = 50
	maxOpportunityLimit     = 200
)

func NewHandler(campaignRepo database.CampaignRepository, oppRepo database.OpportunityRepository,
	responseRepo database.ResponseRepository, generator GeneratorInterface,
	scheduler SchedulerInterface) *Handler {
	return &Handler{
		campaignRepo: campaignRepo,
		oppRepo:      oppRepo,
		responseRepo: responseRepo,
		generator:    generator,
		scheduler:    scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"service":   "essaim",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.campaignRepo.GetActiveCampaignCount(); err == nil {
		health["active_campaigns"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	activeCampaigns, err := h.campaignRepo.GetActiveCampaignCount()
	if err != nil {
		slog.Error("Database error", "operation", "count_campaigns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats, err := h.oppRepo.GetOpportunityStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_campaigns":        activeCampaigns,
		"pending_opportunities":   stats.Pending,
		"generated_opportunities": stats.Generated,
		"approved_opportunities":  stats.Approved,
		"total_opportunities":     stats.Total,
	})
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.campaignRepo.ListCampaigns()
	if err != nil {
		slog.Error("Database error", "operation", "list_campaigns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]campaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, toCampaignResponse(campaign.Campaign,
			campaign.TotalOpportunities, campaign.PendingOpportunities))
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": out, "total": len(out)})
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.BrandName == "" || req.Description == "" || req.Keywords == "" || req.Subreddits == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "brand_name, description, keywords and subreddits are required",
		})
		return
	}

	campaign, err := h.campaignRepo.CreateCampaign(req.BrandName, req.Description,
		req.Keywords, req.Subreddits)
	if err != nil {
		slog.Error("Database error", "operation", "create_campaign", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Campaign created", "campaign", campaign.BrandName, "id", campaign.ID)

	// First scan runs in the background so the response returns immediately.
	h.scheduler.ScanCampaign(*campaign)

	c.JSON(http.StatusCreated, toCampaignResponse(*campaign, 0, 0))
}

func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign id"})
		return
	}

	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active field is required"})
		return
	}

	updated, err := h.campaignRepo.SetCampaignActive(id, *req.Active)
	if err != nil {
		slog.Error("Database error", "operation", "update_campaign", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "active": *req.Active})
}

func (h *Handler) DeleteCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign id"})
		return
	}

	deleted, err := h.campaignRepo.DeleteCampaign(id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_campaign", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	slog.Info("Campaign deleted", "id", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListOpportunities(c *gin.Context) {
	var campaignID int64
	if raw := c.Query("campaign_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign_id"})
			return
		}
		campaignID = parsed
	}

	status := c.Query("status")
	if status != "" && !database.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	limit := defaultOpportunityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(parsed, maxOpportunityLimit)
	}

	opportunities, err := h.oppRepo.ListOpportunities(campaignID, status, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_opportunities", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]opportunityResponse, 0, len(opportunities))
	for _, opp := range opportunities {
		out = append(out, toOpportunityResponse(opp))
	}

	c.JSON(http.StatusOK, gin.H{"opportunities": out, "total": len(out)})
}

func (h *Handler) UpdateOpportunity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity id"})
		return
	}

	var req updateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status field is required"})
		return
	}
	if !database.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	updated, err := h.oppRepo.UpdateOpportunityStatus(id, req.Status)
	if errors.Is(err, database.ErrStatusTransition) {
		c.JSON(http.StatusConflict, gin.H{"error": "Status cannot move backward"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "update_opportunity", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status})
}

func (h *Handler) GenerateResponses(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity id"})
		return
	}

	opp, err := h.oppRepo.GetOpportunity(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_opportunity", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if opp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	// Idempotent: a second call returns the stored set untouched.
	existing, err := h.responseRepo.GetResponses(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_responses", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if len(existing) > 0 {
		out := make([]replyResponse, 0, len(existing))
		for _, resp := range existing {
			out = append(out, replyResponse{
				Style: resp.Style,
				Text:  resp.Text,
				Score: resp.AntiBanScore,
				Tips:  resp.Tips,
			})
		}
		c.JSON(http.StatusOK, gin.H{"replies": out})
		return
	}

	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Response generation is not configured"})
		return
	}

	campaign, err := h.campaignRepo.GetCampaign(opp.CampaignID)
	if err != nil || campaign == nil {
		slog.Error("Database error", "operation", "get_campaign", "id", opp.CampaignID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	replies, err := h.generator.Run(c.Request.Context(), *opp, *campaign)
	if err != nil {
		slog.Error("Response generation failed", "opportunity", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Response generation failed"})
		return
	}

	out := make([]replyResponse, 0, len(replies))
	for _, reply := range replies {
		err := h.responseRepo.InsertResponse(id, reply.Style, reply.Text, reply.Score, reply.Tips)
		if err != nil {
			slog.Error("Database error", "operation", "insert_response", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		out = append(out, replyResponse(reply))
	}

	// An opportunity already approved or rejected keeps its status.
	_, err = h.oppRepo.UpdateOpportunityStatus(id, database.StatusGenerated)
	if err != nil && !errors.Is(err, database.ErrStatusTransition) {
		slog.Error("Database error", "operation", "update_opportunity", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Responses generated", "opportunity", id, "replies", len(out))

	c.JSON(http.StatusOK, gin.H{"replies": out})
}

func (h *Handler) TriggerScan(c *gin.Context) {
	count, err := h.scheduler.ScanAll(c.Request.Context())
	if errors.Is(err, scheduler.ErrScanInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "A scan is already in progress"})
		return
	}
	if err != nil {
		slog.Error("Manual scan failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"new_opportunities": count})
}
