package db

import (
	"context"
	"errors"
	"time"

	"attestd/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Save(ctx context.Context, record domain.ReceiptRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if record.WiseReceiptHash == "" {
		return errors.New("wise_receipt_hash is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := ReceiptModel{
		ID:              uuid.NewString(),
		WiseReceiptHash: record.WiseReceiptHash,
		SourceHost:      record.SourceHost,
		TransferID:      record.TransferID,
		PayerRef:        record.PayerRef,
		Amount:          record.Amount,
		ClaimTimestamp:  record.ClaimTimestamp,
		CreatedAt:       createdAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ReceiptRepository) ListByTransferID(ctx context.Context, transferID string) ([]domain.ReceiptRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if transferID == "" {
		return nil, errors.New("transfer_id is required")
	}
	var models []ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ReceiptRecord, 0, len(models))
	for _, model := range models {
		out = append(out, domain.ReceiptRecord{
			WiseReceiptHash: model.WiseReceiptHash,
			SourceHost:      model.SourceHost,
			TransferID:      model.TransferID,
			PayerRef:        model.PayerRef,
			Amount:          model.Amount,
			ClaimTimestamp:  model.ClaimTimestamp,
			CreatedAt:       model.CreatedAt,
		})
	}
	return out, nil
}
