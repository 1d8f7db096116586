package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"budget-calculator/internal/service"

	"github.com/go-chi/chi/v5"
)

const msgExpenseAdded = "Expense added."

// Index renders the landing page. Logged-in visitors also get their
// expenses and total.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		h.render(w, r, "index.html", PageData{})
		return
	}

	data := PageData{Filter: filterFromQuery(r)}
	expenses, err := h.svc.Ledger.List(r.Context(), id, data.Filter)
	if err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			h.serverError(w, r, "list expenses", err)
			return
		}
		data.Flash = verr.Error()
		data.Filter = service.ListFilter{}
		if expenses, err = h.svc.Ledger.List(r.Context(), id, data.Filter); err != nil {
			h.serverError(w, r, "list expenses", err)
			return
		}
	}
	data.Expenses = expenses

	if data.Total, err = h.svc.Ledger.Total(r.Context(), id); err != nil {
		h.serverError(w, r, "sum expenses", err)
		return
	}
	h.render(w, r, "index.html", data)
}

// ListExpenses returns the identity's expenses as a JSON array.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	expenses, err := h.svc.Ledger.List(r.Context(), id, filterFromQuery(r))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
			return
		}
		h.serverError(w, r, "list expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// AddExpenseForm renders the form to create a new expense.
func (h *Handlers) AddExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "add_expense.html", PageData{
		Form: map[string]string{"date": time.Now().Format(time.DateOnly)},
	})
}

// AddExpense handles the creation of a new expense.
func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "add_expense.html", PageData{Flash: msgInvalidForm})
		return
	}
	in := service.ExpenseInput{
		Description: r.FormValue("description"),
		Amount:      r.FormValue("amount"),
		Date:        r.FormValue("date"),
		Category:    r.FormValue("category"),
	}

	expenseID, err := h.svc.Ledger.Add(r.Context(), id, in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.metrics.RecordLedger("add", "invalid")
			h.renderStatus(w, r, http.StatusUnprocessableEntity, "add_expense.html", PageData{
				Flash: verr.Error(),
				Form: map[string]string{
					"description": in.Description,
					"amount":      in.Amount,
					"date":        in.Date,
					"category":    in.Category,
				},
			})
			return
		}
		h.serverError(w, r, "add expense", err)
		return
	}

	h.metrics.RecordLedger("add", "success")
	h.log.Debugw("expense added", "user_id", id.UserID, "expense_id", expenseID)
	h.redirectWithFlash(w, r, "/", msgExpenseAdded)
}

// DeleteExpense removes an expense owned by the identity. Unknown or foreign
// ids are ignored and the client is redirected as on success.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.svc.Ledger.Delete(r.Context(), id, expenseID); err != nil {
		if !errors.Is(err, service.ErrExpenseNotFound) {
			h.serverError(w, r, "delete expense", err)
			return
		}
		h.metrics.RecordLedger("delete", "not_found")
		h.log.Infow("delete ignored: expense not owned or missing", "user_id", id.UserID, "expense_id", expenseID)
	} else {
		h.metrics.RecordLedger("delete", "success")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func filterFromQuery(r *http.Request) service.ListFilter {
	q := r.URL.Query()
	return service.ListFilter{Date: q.Get("date"), Sort: q.Get("sort")}
}
