package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/csvimport"
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/service"
)

// multipart overhead allowed on top of the file itself
const multipartSlack = 1 << 20

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	maxFileSize     int64
	logger          *otelzap.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService service.CustomerService, maxFileSize int64, logger *otelzap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		maxFileSize:     maxFileSize,
		logger:          logger,
	}
}

// ImportResponse is returned by a successful file import
type ImportResponse struct {
	*csvimport.BulkResult
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
}

// ListCustomers handles GET /customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.customerService.List(r.Context(), models.CustomerFilter{
		OrganizationID: orgID,
		Status:         query.Get("status"),
		Search:         query.Get("search"),
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// CreateCustomer handles POST /customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var in models.CustomerInput
	if err := decode(r, &in); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	customer, err := h.customerService.Create(r.Context(), orgID, &in)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondCreated(w, customer)
}

// GetCustomer handles GET /customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), orgID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// UpdateCustomer handles PUT /customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var upd models.CustomerUpdate
	if err := decode(r, &upd); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	customer, err := h.customerService.Update(r.Context(), orgID, chi.URLParam(r, "id"), &upd)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// DeleteCustomer handles DELETE /customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	if err := h.customerService.Delete(r.Context(), orgID, chi.URLParam(r, "id")); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// BulkCreate handles POST /customers/bulk. Any invalid record rejects the batch.
func (h *CustomerHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	orgID, err := organization(r)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	var req csvimport.BulkRequest
	if err := decode(r, &req); err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	result, err := h.customerService.BulkCreate(r.Context(), orgID, req.Customers)
	if err != nil {
		handleError(r.Context(), w, err, h.logger)
		return
	}

	respondCreated(w, result)
}

// ImportFile handles POST /customers/import with a multipart "file" field.
// The file goes through the same pipeline as a client-side upload.
func (h *CustomerHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := organization(r)
	if err != nil {
		handleError(ctx, w, err, h.logger)
		return
	}

	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartSlack)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(ctx, w, csvimport.ErrFileTooLarge, h.logger)
			return
		}
		respondError(w, http.StatusBadRequest, models.CodeInvalidInput, "a file field is required")
		return
	}
	defer file.Close()

	if err := csvimport.CheckContentType(header.Header.Get("Content-Type")); err != nil {
		handleError(ctx, w, err, h.logger)
		return
	}

	uploader := csvimport.NewUploader(service.Submitter(h.customerService, orgID), h.maxFileSize)

	res, err := uploader.Upload(ctx, header.Filename, file)
	if err != nil {
		h.logger.Ctx(ctx).Info("customer import rejected",
			zap.String("file", header.Filename),
			zap.String("organization_id", orgID),
			zap.Error(err),
		)
		handleError(ctx, w, err, h.logger)
		return
	}

	created := uploader.Created()
	if created == nil {
		// header-only file: nothing to submit
		created = &csvimport.BulkResult{Message: "No customers found in file", Customers: []models.Customer{}}
	}

	respondCreated(w, ImportResponse{
		BulkResult: created,
		FileName:   res.FileName,
		Rows:       res.Rows,
	})
}
