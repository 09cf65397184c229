package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"himakeu/models"
)

func (app *application) adminDashboardHandler(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := app.ledger.FinancialSummary(ctx)
	if err != nil {
		app.log.Error("financial summary query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load admin dashboard")
		return
	}
	pending, err := app.ledger.PendingCount(ctx)
	if err != nil {
		app.log.Error("pending count query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load admin dashboard")
		return
	}
	total, active, err := app.directory.CountMembers(ctx)
	if err != nil {
		app.log.Error("member count query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load admin dashboard")
		return
	}

	ok(c, gin.H{
		"financial":        summary,
		"pendingApprovals": pending,
		"memberStats": gin.H{
			"totalMembers":  total,
			"activeMembers": active,
		},
	})
}

// pendingApprovalsHandler lists the queue with member identity merged in
// from the directory. The two stores share no SQL engine, so the join
// happens here in application code.
func (app *application) pendingApprovalsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	txns, err := app.ledger.PendingApprovals(ctx)
	if err != nil {
		app.log.Error("pending approvals query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load pending approvals")
		return
	}

	ids := make([]uint, 0, len(txns))
	for _, t := range txns {
		ids = append(ids, t.MemberID)
	}
	members, err := app.directory.MembersByIDs(ctx, ids)
	if err != nil {
		app.log.Error("member lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load pending approvals")
		return
	}

	type pendingItem struct {
		models.Transaction
		MemberName string `json:"memberName"`
		MemberNIM  string `json:"memberNim"`
	}
	out := make([]pendingItem, 0, len(txns))
	for _, t := range txns {
		item := pendingItem{Transaction: t}
		if m, found := members[t.MemberID]; found {
			item.MemberName = m.FullName
			item.MemberNIM = m.NIM
		}
		out = append(out, item)
	}
	ok(c, out)
}

func (app *application) approvePaymentHandler(c *gin.Context) {
	var req struct {
		TransactionID string `json:"transactionId"`
		Action        string `json:"action"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TransactionID == "" {
		fail(c, http.StatusBadRequest, "transactionId and action are required")
		return
	}

	act, _ := currentActor(c)
	status, err := app.ledger.Decide(c.Request.Context(), req.TransactionID, req.Action, req.Notes, act.UserID)
	if err != nil {
		failErr(c, err)
		return
	}
	okMsg(c, fmt.Sprintf("Payment %s successfully", status), gin.H{"status": status})
}

func (app *application) addExpenseHandler(c *gin.Context) {
	var req struct {
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 || req.Description == "" {
		fail(c, http.StatusBadRequest, "Amount and description are required")
		return
	}

	act, _ := currentActor(c)
	txn, err := app.ledger.AddExpense(c.Request.Context(), act.UserID, act.MemberID, req.Amount, req.Description)
	if err != nil {
		app.log.Error("expense insert failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to add expense")
		return
	}
	okMsg(c, "Expense added successfully", gin.H{"transactionId": txn.TransactionID})
}

// transactionDecisionsHandler returns the append-only decision history of one
// transaction, for auditing who approved or rejected it and when.
func (app *application) transactionDecisionsHandler(c *gin.Context) {
	txnID := c.Param("transactionId")
	if _, err := app.ledger.ByTransactionID(c.Request.Context(), txnID); err != nil {
		failErr(c, err)
		return
	}
	decs, err := app.ledger.DecisionsFor(c.Request.Context(), txnID)
	if err != nil {
		app.log.Error("decision history query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to get decision history")
		return
	}
	ok(c, decs)
}

func (app *application) adminTransactionsHandler(c *gin.Context) {
	txns, err := app.ledger.Recent(c.Request.Context(), 100)
	if err != nil {
		app.log.Error("transactions query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to get transactions")
		return
	}
	ok(c, txns)
}

// yearlySummaryHandler breaks the year down into per-month income/expense
// buckets. Defaults to the current year; ?year= selects another.
func (app *application) yearlySummaryHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil || year < 2000 || year > 2100 {
		fail(c, http.StatusBadRequest, "Invalid year")
		return
	}
	months, err := app.ledger.YearlySummary(c.Request.Context(), year)
	if err != nil {
		app.log.Error("yearly summary query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to get yearly summary")
		return
	}
	ok(c, gin.H{"year": year, "months": months})
}

// exportTransactionsHandler streams the recent ledger as an xlsx workbook.
func (app *application) exportTransactionsHandler(c *gin.Context) {
	txns, err := app.ledger.Recent(c.Request.Context(), 1000)
	if err != nil {
		app.log.Error("transactions query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to export transactions")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Transaction ID", "Member ID", "Type", "Amount", "Period", "Description", "Status", "Notes", "Created At", "Approved At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, t := range txns {
		values := []interface{}{
			t.TransactionID, t.MemberID, string(t.Type), t.Amount, t.Period,
			t.Description, string(t.Status), t.Notes,
			t.CreatedAt.Format(time.RFC3339), "",
		}
		if t.ApprovedAt != nil {
			values[9] = t.ApprovedAt.Format(time.RFC3339)
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	name := "transactions_" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		app.log.Error("xlsx write failed", zap.Error(err))
	}
}

func (app *application) adminMembersHandler(c *gin.Context) {
	members, err := app.directory.Members(c.Request.Context())
	if err != nil {
		app.log.Error("members query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to get members")
		return
	}
	ok(c, members)
}

func (app *application) updateMemberStatusHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid member id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := app.directory.UpdateStatus(c.Request.Context(), uint(id), models.MemberStatus(req.Status)); err != nil {
		failErr(c, err)
		return
	}
	okMsg(c, "Member status updated to "+req.Status, nil)
}

func (app *application) deleteMemberHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid member id")
		return
	}
	if err := app.directory.Delete(c.Request.Context(), uint(id)); err != nil {
		failErr(c, err)
		return
	}
	okMsg(c, "Member deleted successfully", nil)
}
