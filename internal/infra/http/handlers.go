package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"attestd/internal/domain"
	"attestd/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type verifyAttestationRequest struct {
	Attestation      map[string]any `json:"attestation" validate:"required"`
	Expected         *expectedInput `json:"expected,omitempty"`
	SelectedTransfer string         `json:"selectedTransfer,omitempty" validate:"omitempty,max=128"`
	RecentCount      int            `json:"recentCount,omitempty" validate:"omitempty,min=1,max=100"`
}

type expectedInput struct {
	Amount     string `json:"amount,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	TransferID string `json:"transferId,omitempty"`
	PayerRef   string `json:"payerRef,omitempty"`
}

type verifyAttestationResponse struct {
	Verified         bool                    `json:"verified"`
	WiseReceiptHash  string                  `json:"wiseReceiptHash"`
	Normalized       domain.NormalizedClaim  `json:"normalized"`
	RecentTransfers  []domain.RecentTransfer `json:"recentTransfers"`
	SelectedTransfer *domain.RecentTransfer  `json:"selectedTransfer,omitempty"`
	Verifier         usecase.VerifierReport  `json:"verifier"`
}

type errorResponse struct {
	Error         string   `json:"error"`
	Details       []string `json:"details,omitempty"`
	AvailableKeys []string `json:"availableKeys,omitempty"`
}

type receiptResponse struct {
	WiseReceiptHash string `json:"wiseReceiptHash"`
	SourceHost      string `json:"sourceHost"`
	TransferID      string `json:"transferId"`
	PayerRef        string `json:"payerRef"`
	Amount          string `json:"amount"`
	ClaimTimestamp  int64  `json:"claimTimestamp"`
	CreatedAt       string `json:"createdAt"`
}

func (s *Server) handleVerifyAttestation(c *gin.Context) {
	start := time.Now()

	var req verifyAttestationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.recorder.IncVerification("invalid_json")
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", []string{"request body is not valid json"}, nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.recorder.IncVerification("invalid_request")
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", requestValidationDetails(err), nil)
		return
	}

	ucReq := usecase.VerifyWiseAttestationRequest{
		Attestation:      req.Attestation,
		SelectedTransfer: req.SelectedTransfer,
		RecentCount:      req.RecentCount,
	}
	if req.Expected != nil {
		ucReq.Expected = domain.ExpectedConstraints{
			Amount:     req.Expected.Amount,
			Timestamp:  req.Expected.Timestamp,
			TransferID: req.Expected.TransferID,
			PayerRef:   req.Expected.PayerRef,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.verifyTimeout)
	defer cancel()

	out, err := s.verifyUC.Execute(ctx, ucReq)
	s.recorder.ObserveVerifyLatency(time.Since(start))
	if err != nil {
		code := s.writeError(c, err)
		s.recorder.IncVerification(code)
		return
	}
	s.recorder.IncVerification("verified")

	s.auditReceipt(c.Request.Context(), out)

	c.JSON(http.StatusOK, verifyAttestationResponse{
		Verified:         out.Verified,
		WiseReceiptHash:  out.WiseReceiptHash,
		Normalized:       out.Claim,
		RecentTransfers:  out.RecentTransfers,
		SelectedTransfer: out.SelectedTransfer,
		Verifier:         out.Verifier,
	})
}

func (s *Server) auditReceipt(ctx context.Context, out *usecase.VerifyWiseAttestationReceipt) {
	if s.receipts == nil {
		return
	}
	record := domain.ReceiptRecord{
		WiseReceiptHash: out.WiseReceiptHash,
		SourceHost:      out.Claim.SourceHost,
		TransferID:      out.Claim.TransferID,
		PayerRef:        out.Claim.PayerRef,
		Amount:          out.Claim.Amount,
		ClaimTimestamp:  out.Claim.Timestamp,
	}
	if err := s.receipts.Save(ctx, record); err != nil {
		s.log.Warn("receipt audit write failed", map[string]any{
			"error":      err.Error(),
			"transferId": record.TransferID,
		})
	}
}

func (s *Server) handleListReceipts(c *gin.Context) {
	if s.receipts == nil {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", nil, nil)
		return
	}
	transferID := c.Param("transfer_id")
	records, err := s.receipts.ListByTransferID(c.Request.Context(), transferID)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", nil, nil)
		return
	}
	out := make([]receiptResponse, 0, len(records))
	for _, record := range records {
		out = append(out, receiptResponse{
			WiseReceiptHash: record.WiseReceiptHash,
			SourceHost:      record.SourceHost,
			TransferID:      record.TransferID,
			PayerRef:        record.PayerRef,
			Amount:          record.Amount,
			ClaimTimestamp:  record.ClaimTimestamp,
			CreatedAt:       record.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// writeError maps pipeline errors onto stable codes. Rejections carry their
// accumulated details and the field names seen in the raw bag; values never
// leave the pipeline.
func (s *Server) writeError(c *gin.Context, err error) string {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNoPresentation):
		status, code = http.StatusBadRequest, "NO_PRESENTATION"
	case errors.Is(err, domain.ErrNotaryKeyMissing):
		status, code = http.StatusBadRequest, "NOTARY_KEY_MISSING"
	case errors.Is(err, domain.ErrVerifierUnavailable):
		status, code = http.StatusInternalServerError, "VERIFIER_UNAVAILABLE"
	case errors.Is(err, domain.ErrVerificationFailed):
		status, code = http.StatusBadRequest, "VERIFICATION_FAILED"
	case errors.Is(err, domain.ErrClaimIncomplete):
		status, code = http.StatusBadRequest, "CLAIM_INCOMPLETE"
	case errors.Is(err, domain.ErrDomainNotAllowed):
		status, code = http.StatusBadRequest, "DOMAIN_NOT_ALLOWED"
	case errors.Is(err, domain.ErrConstraintMismatch):
		status, code = http.StatusBadRequest, "CONSTRAINT_MISMATCH"
	case errors.Is(err, domain.ErrTransferNotFound):
		status, code = http.StatusBadRequest, "TRANSFER_NOT_FOUND"
	}

	var rejection *domain.Rejection
	if errors.As(err, &rejection) {
		writeErrorCode(c, status, code, rejection.Details, rejection.AvailableKeys)
		return code
	}
	writeErrorCode(c, status, code, []string{err.Error()}, nil)
	return code
}

func writeErrorCode(c *gin.Context, status int, code string, details, availableKeys []string) {
	c.JSON(status, errorResponse{
		Error:         code,
		Details:       details,
		AvailableKeys: availableKeys,
	})
}

func requestValidationDetails(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{"request failed validation"}
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, "invalid field "+fe.Field()+": failed "+fe.Tag())
	}
	return details
}
