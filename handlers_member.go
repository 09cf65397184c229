package main

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"himakeu/pkg/receiptscan"
)

func (app *application) memberDashboardHandler(c *gin.Context) {
	act, _ := currentActor(c)
	ctx := c.Request.Context()

	dues, err := app.ledger.DuesStatus(ctx, act.MemberID, app.cfg.Dues.Amount, 6)
	if err != nil {
		app.log.Error("dues status query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	totalPaid, err := app.ledger.TotalPaidByMember(ctx, act.MemberID)
	if err != nil {
		app.log.Error("total paid query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	summary, err := app.ledger.FinancialSummary(ctx)
	if err != nil {
		app.log.Error("financial summary query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	ok(c, gin.H{
		"duesStatus": dues,
		"totalPaid":  totalPaid,
		"transparency": gin.H{
			"currentBalance": summary.CurrentBalance,
			"totalIncome":    summary.TotalIncome,
			"totalExpense":   summary.TotalExpense,
		},
	})
}

var (
	errReceiptMissing  = errors.New("Receipt file is required")
	errReceiptType     = errors.New("Only image files (JPG, PNG) are allowed")
	errReceiptTooLarge = errors.New("File size exceeds the upload limit")
)

var receiptMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// validateReceipt checks the upload before anything touches disk: content
// type allow-list, extension cross-check, and the size ceiling.
func validateReceipt(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return errReceiptMissing
	}
	if fh.Size > maxBytes {
		return errReceiptTooLarge
	}
	if !receiptMIMEs[strings.ToLower(fh.Header.Get("Content-Type"))] {
		return errReceiptType
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg", ".png":
		return nil
	}
	return errReceiptType
}

func (app *application) uploadPaymentHandler(c *gin.Context) {
	act, _ := currentActor(c)

	// parsing the form happens here, under the route's body cap; an upload
	// cut off by it reports the size ceiling, not a missing field
	file, err := c.FormFile("receipt")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			fail(c, http.StatusBadRequest, errReceiptTooLarge.Error())
			return
		}
		fail(c, http.StatusBadRequest, errReceiptMissing.Error())
		return
	}
	if err := validateReceipt(file, app.cfg.Upload.MaxBytes); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	period := strings.TrimSpace(c.PostForm("period"))
	if period == "" {
		fail(c, http.StatusBadRequest, "Period is required")
		return
	}
	description := strings.TrimSpace(c.PostForm("description"))

	// write the file first; the ledger row is only inserted once the receipt
	// is durably on disk
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("receipt_%d_%d%s", act.MemberID, time.Now().UnixNano(), ext)
	dst := filepath.Join(app.cfg.Upload.Base, "receipts", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		app.log.Error("receipt write failed", zap.String("file", filename), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to store receipt. Please try again.")
		return
	}

	desc := "Iuran " + period
	if description != "" {
		desc += " - " + description
	}
	receiptURL := path.Join("/uploads/receipts", filename)
	txn, err := app.ledger.CreatePending(c.Request.Context(), act.MemberID, app.cfg.Dues.Amount, period, desc, receiptURL)
	if err != nil {
		app.log.Error("pending transaction insert failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Upload failed. Please try again.")
		return
	}

	if app.cfg.OCR.Enabled {
		go app.scanReceipt(txn.TransactionID, dst)
	}

	okMsg(c, "Payment proof uploaded successfully. Waiting for admin approval.", gin.H{
		"transactionId": txn.TransactionID,
		"filename":      filename,
	})
}

// scanReceipt OCRs the stored receipt and attaches the amount hint. Runs off
// the request path; any failure is logged and forgotten.
func (app *application) scanReceipt(transactionID, filePath string) {
	amount, conf, raw, err := receiptscan.ExtractAmount(filePath)
	if err != nil {
		app.log.Debug("receipt scan found no amount",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ledger.AttachOCRAmount(ctx, transactionID, amount); err != nil {
		app.log.Error("failed to attach scanned amount",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return
	}
	app.log.Info("receipt amount scanned",
		zap.String("transaction_id", transactionID),
		zap.Int64("amount", amount),
		zap.Float64("confidence", conf),
		zap.String("raw", raw),
	)
}

func (app *application) paymentHistoryHandler(c *gin.Context) {
	act, _ := currentActor(c)
	history, err := app.ledger.HistoryForMember(c.Request.Context(), act.MemberID)
	if err != nil {
		app.log.Error("payment history query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load payment history")
		return
	}
	ok(c, history)
}
