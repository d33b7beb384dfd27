package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/service"
)

// CampaignHandler handles campaign HTTP requests
type CampaignHandler struct {
	campaignService service.CampaignService
	dropService     service.DropService
	logger          *otelzap.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService service.CampaignService, dropService service.DropService, logger *otelzap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		dropService:     dropService,
		logger:          logger,
	}
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var in models.CampaignInput
	if err := decode(r, &in); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	campaign, err := h.campaignService.Create(r.Context(), orgID, &in)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondCreated(w, campaign)
}

// ListCampaigns handles GET /campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	filter := models.CampaignFilter{
		OrganizationID: orgID,
		Status:         query.Get("status"),
		Page:           page,
		PageSize:       pageSize,
	}

	result, err := h.campaignService.List(r.Context(), filter)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// GetCampaign handles GET /campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	campaign, err := h.campaignService.GetByID(r.Context(), orgID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, campaign)
}

// UpdateCampaign handles PUT /campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var in models.CampaignInput
	if err := decode(r, &in); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	campaign, err := h.campaignService.Update(r.Context(), orgID, chi.URLParam(r, "id"), &in)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, campaign)
}

// DeleteCampaign handles DELETE /campaigns/{id}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	if err := h.campaignService.Delete(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// SendCampaign handles POST /campaigns/{id}/send
func (h *CampaignHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var req service.SendCampaignRequest
	if err := decode(r, &req); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	result, err := h.campaignService.SendCampaign(r.Context(), orgID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// PreviewScript handles POST /campaigns/{id}/preview
func (h *CampaignHandler) PreviewScript(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var req service.PreviewRequest
	if err := decode(r, &req); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	result, err := h.campaignService.Preview(r.Context(), orgID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// ListDrops handles GET /campaigns/{id}/drops
func (h *CampaignHandler) ListDrops(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	drops, err := h.dropService.ListByCampaign(r.Context(), orgID, chi.URLParam(r, "id"), r.URL.Query().Get("status"))
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, map[string]interface{}{"drops": drops, "total": len(drops)})
}

// GetDrop handles GET /campaigns/{id}/drops/{dropID}
func (h *CampaignHandler) GetDrop(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	drop, err := h.dropService.GetByID(r.Context(), orgID, chi.URLParam(r, "dropID"))
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}
	if drop.CampaignID != chi.URLParam(r, "id") {
		respondError(w, http.StatusNotFound, models.CodeNotFound, "voicemail drop not found")
		return
	}

	respondSuccess(w, drop)
}
