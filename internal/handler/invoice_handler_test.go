package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
	"finbook/internal/handler"
	"finbook/internal/middleware"
	"finbook/mocks"
)

func authedContext(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, *gin.Context, uuid.UUID, uuid.UUID) {
	t.Helper()
	businessID := uuid.New()
	userID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request, _ = http.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")

	c.Set(middleware.ContextKeyBusinessID, businessID)
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, string(domain.RoleAdmin))
	return w, c, businessID, userID
}

func TestInvoiceHandler_Create_PassesIdempotencyKey(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	body := map[string]interface{}{
		"client_id":    uuid.New().String(),
		"invoice_date": time.Now().UTC().Format(time.RFC3339),
		"due_date":     time.Now().UTC().Add(15 * 24 * time.Hour).Format(time.RFC3339),
		"line_items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 2, "rate": 100, "gst_rate": 18},
		},
	}

	w, c, businessID, userID := authedContext(t, http.MethodPost, "/api/v1/invoices", body)
	c.Request.Header.Set("Idempotency-Key", "retry-key-1")

	created := &domain.Invoice{ID: uuid.New(), BusinessID: businessID, Number: "INV-2026-27-0001"}
	mockInv.On("Create", mock.Anything, businessID, userID,
		mock.AnythingOfType("service.InvoiceInput"), "retry-key-1").Return(created, nil)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockInv.AssertExpectations(t)
}

func TestInvoiceHandler_Create_Unauthenticated(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader(nil))

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockInv.AssertNotCalled(t, "Create")
}

func TestInvoiceHandler_List_InvalidClientIDFilter(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	w, c, _, _ := authedContext(t, http.MethodGet, "/api/v1/invoices?client_id=not-a-uuid", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockInv.AssertNotCalled(t, "List")
}

func TestInvoiceHandler_Update_NonDraftConflict(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	invoiceID := uuid.New()
	body := map[string]interface{}{
		"client_id":    uuid.New().String(),
		"invoice_date": time.Now().UTC().Format(time.RFC3339),
		"due_date":     time.Now().UTC().Format(time.RFC3339),
		"line_items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "rate": 100, "gst_rate": 18},
		},
	}

	w, c, businessID, _ := authedContext(t, http.MethodPut, "/api/v1/invoices/"+invoiceID.String(), body)
	c.Params = gin.Params{{Key: "id", Value: invoiceID.String()}}

	mockInv.On("Update", mock.Anything, businessID, invoiceID,
		mock.AnythingOfType("service.InvoiceInput")).Return(nil, domain.ErrInvoiceNotDraft)

	h.Update(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INVOICE_NOT_DRAFT", resp.Error.Code)
	mockInv.AssertExpectations(t)
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	w, c, _, _ := authedContext(t, http.MethodGet, "/api/v1/invoices/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockInv.AssertNotCalled(t, "Get")
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockInv, nil)

	invoiceID := uuid.New()
	w, c, businessID, _ := authedContext(t, http.MethodGet, "/api/v1/invoices/"+invoiceID.String()+"/pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: invoiceID.String()}}

	mockInv.On("RenderPDF", mock.Anything, businessID, invoiceID).
		Return([]byte("%PDF-1.4 fake"), "INV-2026-27-0001.pdf", nil)

	h.DownloadPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INV-2026-27-0001.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	mockInv.AssertExpectations(t)
}

func TestInvoiceHandler_MakeRecurring(t *testing.T) {
	mockInv := new(mocks.MockInvoiceService)
	mockRec := new(mocks.MockRecurringService)
	h := handler.NewInvoiceHandler(mockInv, mockRec)

	invoiceID := uuid.New()
	body := map[string]interface{}{
		"frequency":     "monthly",
		"start_date":    "2026-09-01T00:00:00Z",
		"end_type":      "never",
		"send_to_email": "accounts@client.in",
	}

	w, c, businessID, _ := authedContext(t, http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/recurring", body)
	c.Params = gin.Params{{Key: "id", Value: invoiceID.String()}}

	inv := &domain.Invoice{ID: invoiceID, BusinessID: businessID, Number: "INV-2026-27-0001"}
	rec := &domain.RecurringInvoice{ID: uuid.New(), BusinessID: businessID}
	mockInv.On("Get", mock.Anything, businessID, invoiceID).Return(inv, nil)
	mockRec.On("AttachToInvoice", mock.Anything, inv,
		mock.AnythingOfType("billing.RecurringSettings")).Return(rec, nil)

	h.MakeRecurring(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockInv.AssertExpectations(t)
	mockRec.AssertExpectations(t)
}
