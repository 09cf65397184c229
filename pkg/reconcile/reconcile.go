// Package reconcile runs the consistency pass over the split stores. The two
// databases share no foreign keys, so ledger rows can outlive their member or
// their receipt file; this pass finds and flags them instead of letting the
// drift go unnoticed.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"himakeu/models"
	"himakeu/pkg/directory"
	"himakeu/pkg/ledger"
)

// Reconciler cross-checks ledger rows against the member directory and the
// receipt files on disk.
type Reconciler struct {
	ledger    *ledger.Store
	directory *directory.Store
	uploadDir string // base dir served under /uploads
	log       *zap.Logger
}

func New(l *ledger.Store, d *directory.Store, uploadDir string, log *zap.Logger) *Reconciler {
	return &Reconciler{ledger: l, directory: d, uploadDir: uploadDir, log: log}
}

// Report summarizes one reconciliation pass.
type Report struct {
	Checked        int
	MissingMembers int
	MissingFiles   int
}

// Run walks unflagged ledger rows and flags every one whose member no longer
// exists in the directory or whose receipt file is gone. Flagging is one-way;
// admins review flagged rows by hand.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var rep Report
	txns, err := r.ledger.Unflagged(ctx, 0)
	if err != nil {
		return rep, err
	}

	// batch the member existence checks, one directory query for the pass
	ids := make([]uint, 0, len(txns))
	seen := make(map[uint]bool, len(txns))
	for _, t := range txns {
		if !seen[t.MemberID] {
			seen[t.MemberID] = true
			ids = append(ids, t.MemberID)
		}
	}
	members, err := r.directory.MembersByIDs(ctx, ids)
	if err != nil {
		return rep, err
	}

	for _, t := range txns {
		rep.Checked++
		if _, ok := members[t.MemberID]; !ok {
			rep.MissingMembers++
			reason := fmt.Sprintf("member %d missing from directory", t.MemberID)
			r.flag(ctx, t, reason)
			continue
		}
		if t.ReceiptURL != "" && !r.receiptExists(t.ReceiptURL) {
			rep.MissingFiles++
			r.flag(ctx, t, "receipt file missing: "+t.ReceiptURL)
		}
	}

	r.log.Info("reconcile pass finished",
		zap.Int("checked", rep.Checked),
		zap.Int("missing_members", rep.MissingMembers),
		zap.Int("missing_files", rep.MissingFiles),
	)
	return rep, nil
}

func (r *Reconciler) flag(ctx context.Context, t models.Transaction, reason string) {
	if err := r.ledger.Flag(ctx, t.TransactionID, reason); err != nil {
		r.log.Error("failed to flag transaction",
			zap.String("transaction_id", t.TransactionID), zap.Error(err))
		return
	}
	r.log.Warn("flagged inconsistent transaction",
		zap.String("transaction_id", t.TransactionID), zap.String("reason", reason))
}

// receiptExists maps a public /uploads URL back to a path under uploadDir and
// stats it.
func (r *Reconciler) receiptExists(receiptURL string) bool {
	rel := strings.TrimPrefix(receiptURL, "/uploads/")
	if rel == receiptURL || strings.Contains(rel, "..") {
		return false // unexpected shape, treat as missing
	}
	_, err := os.Stat(filepath.Join(r.uploadDir, filepath.FromSlash(rel)))
	return err == nil
}
