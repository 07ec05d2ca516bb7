package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"moneta/internal/core"
	"moneta/internal/export"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	owner := s.currentOwner(r)
	data := struct {
		Owner      string
		SignedIn   bool
		Categories []string
	}{
		Owner:      owner,
		SignedIn:   s.identity != nil && owner != s.defaultOwner,
		Categories: []string{"Food", "Transport", "Shopping", "Bills", "Entertainment"},
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	owner := s.currentOwner(r)
	desc := sanitizeInput(r.Form.Get("description"))
	amountStr := sanitizeInput(r.Form.Get("amount"))
	kind := core.Kind(sanitizeInput(r.Form.Get("type")))
	category := sanitizeInput(r.Form.Get("category"))
	date := sanitizeInput(r.Form.Get("date"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	tx, err := s.svc.AddTransaction(r.Context(), owner, desc, core.Money{Cents: cents}, kind, category, date)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidKind), errors.Is(err, core.ErrInvalidAmount):
			UnprocessableEntityError("Invalid transaction data").Write(w)
		default:
			slog.ErrorContext(r.Context(), "Transaction append error", "error", err,
				"owner", owner, "amount_cents", cents)
			InternalServerError("Could not save transaction").Write(w)
		}
		return
	}

	s.invalidateOwner(owner)

	resp := NewHTMXResponse().
		TriggerTransactionCreated(tx.ID).
		TriggerOverviewRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("Transaction recorded")

	if snap, err := s.getSnapshot(r.Context(), owner); err == nil && s.svc.GoalReached(snap) {
		resp.TriggerGoalReached()
	}

	sign := "-"
	if tx.Kind == core.Income {
		sign = "+"
	}
	resp.BodyHTML(`<div class="success">Recorded: ` +
		template.HTMLEscapeString(tx.Description) +
		` ` + sign + template.HTMLEscapeString(formatAmount(tx.Amount.Cents)) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		MethodNotAllowedError("DELETE").Write(w)
		return
	}

	id, err := parseRecordID(r.URL.Path)
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	owner := s.currentOwner(r)
	removed, err := s.svc.RemoveTransaction(r.Context(), owner, id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction remove error", "error", err, "owner", owner, "record_id", id)
		InternalServerError("Could not delete transaction").Write(w)
		return
	}
	if !removed {
		NotFoundError("Transaction not found").Write(w)
		return
	}

	s.invalidateOwner(owner)

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerOverviewRefresh().
		Write(w)
}

// handleOverview renders the dashboard partial: totals, goal
// progress, per-category breakdown, and the transaction list.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	owner := s.currentOwner(r)
	snap, err := s.getSnapshot(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview snapshot error", "error", err, "owner", owner)
		_, _ = w.Write([]byte(`<section id="overview" class="overview"><div class="placeholder">Could not load overview</div></section>`))
		return
	}

	type categoryRow struct {
		Name, Amount, Color string
		Width               int
	}
	type itemRow struct {
		ID                        int64
		Description, Date, Amount string
		Category, Color, Sign     string
		Income                    bool
	}
	data := struct {
		Owner         string
		TotalIncome   string
		TotalExpense  string
		NetBalance    string
		GoalProgress  int
		GoalReached   bool
		RewardClaimed bool
		Rows          []categoryRow
		Items         []itemRow
	}{
		Owner:        owner,
		TotalIncome:  formatAmount(snap.TotalIncome.Cents),
		TotalExpense: formatAmount(snap.TotalExpense.Cents),
		NetBalance:   formatAmount(snap.NetBalance.Cents),
		GoalProgress: snap.GoalProgress,
		GoalReached:  s.svc.GoalReached(snap),
	}

	if data.GoalReached && s.identity != nil && owner != s.defaultOwner {
		claimed, err := s.identity.RewardClaimed(r.Context(), owner)
		if err != nil {
			slog.WarnContext(r.Context(), "Reward state lookup failed", "error", err, "owner", owner)
		}
		data.RewardClaimed = claimed
	}

	// Scale category bars against the largest bucket.
	var maxCents int64
	for _, m := range snap.ByCategory {
		if m.Cents > maxCents {
			maxCents = m.Cents
		}
	}
	for name, m := range snap.ByCategory {
		width := 0
		if maxCents > 0 && m.Cents > 0 {
			width = int((m.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, categoryRow{
			Name:   name,
			Amount: formatAmount(m.Cents),
			Color:  categoryColor(name),
			Width:  width,
		})
	}

	items, err := s.getList(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err, "owner", owner)
	}
	for _, t := range items {
		sign := "-"
		if t.Kind == core.Income {
			sign = "+"
		}
		data.Items = append(data.Items, itemRow{
			ID:          t.ID,
			Description: t.Description,
			Date:        t.Date,
			Amount:      formatAmount(t.Amount.Cents),
			Category:    t.Category,
			Color:       categoryColor(t.Category),
			Sign:        sign,
			Income:      t.Kind == core.Income,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="overview" class="overview"><div class="placeholder">Net: ` +
			template.HTMLEscapeString(data.NetBalance) + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "overview.html", "owner", owner)
		_, _ = w.Write([]byte(`<section id="overview" class="overview"><div class="placeholder">Could not render overview</div></section>`))
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	owner := s.currentOwner(r)
	items, err := s.getList(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export list error", "error", err, "owner", owner)
		http.Error(w, "could not export transactions", http.StatusInternalServerError)
		return
	}

	filename := "transactions-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, items); err != nil {
		slog.ErrorContext(r.Context(), "CSV write error", "error", err, "owner", owner, "count", len(items))
		return
	}
	slog.InfoContext(r.Context(), "Ledger exported", "owner", owner, "count", len(items))
}
