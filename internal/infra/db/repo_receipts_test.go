//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"attestd/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN_TEST"))
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	dbConn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&ReceiptModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := dbConn.Exec("TRUNCATE receipts").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return dbConn
}

func TestReceiptRepository_SaveAndList(t *testing.T) {
	repo := NewReceiptRepository(setupTestDB(t))
	ctx := context.Background()

	first := domain.ReceiptRecord{
		WiseReceiptHash: "0xaaa",
		SourceHost:      "wise.com",
		TransferID:      "tx-1",
		PayerRef:        "payer-a",
		Amount:          "1000000",
		ClaimTimestamp:  1739102400,
		CreatedAt:       time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := first
	second.WiseReceiptHash = "0xbbb"
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	other := first
	other.WiseReceiptHash = "0xccc"
	other.TransferID = "tx-2"
	if err := repo.Save(ctx, other); err != nil {
		t.Fatalf("save other: %v", err)
	}

	records, err := repo.ListByTransferID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].WiseReceiptHash != "0xaaa" || records[1].WiseReceiptHash != "0xbbb" {
		t.Fatalf("records out of created_at order: %+v", records)
	}
}

func TestReceiptRepository_DuplicateHashRejected(t *testing.T) {
	repo := NewReceiptRepository(setupTestDB(t))
	ctx := context.Background()

	record := domain.ReceiptRecord{
		WiseReceiptHash: "0xdup",
		SourceHost:      "wise.com",
		TransferID:      "tx-1",
		PayerRef:        "payer-a",
		Amount:          "10",
		ClaimTimestamp:  1739102400,
	}
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, record); err == nil {
		t.Fatal("duplicate wise_receipt_hash must be rejected")
	}
}

func TestReceiptRepository_Validation(t *testing.T) {
	repo := NewReceiptRepository(nil)
	if err := repo.Save(context.Background(), domain.ReceiptRecord{WiseReceiptHash: "0xaaa"}); err == nil {
		t.Fatal("nil db must error")
	}

	repo = NewReceiptRepository(setupTestDB(t))
	if err := repo.Save(context.Background(), domain.ReceiptRecord{}); err == nil {
		t.Fatal("missing hash must error")
	}
	if _, err := repo.ListByTransferID(context.Background(), ""); err == nil {
		t.Fatal("empty transfer id must error")
	}
}
