package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// LoansHandler handles loan and reminder endpoints.
type LoansHandler struct {
	DB *sql.DB
}

type borrowRequest struct {
	ISBN         string `json:"isbn"`
	FriendID     int64  `json:"friend_id"`
	BorrowDate   string `json:"borrow_date"`
	DueDate      string `json:"due_date"`
	ReminderDate string `json:"reminder_date"`
}

type returnRequest struct {
	ISBN     string `json:"isbn"`
	FriendID int64  `json:"friend_id"`
}

// List handles GET /api/loans (open loans, due soonest first).
func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := store.ListActiveLoans(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// Borrow handles POST /api/loans.
func (h *LoansHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ISBN == "" || req.FriendID <= 0 {
		jsonError(w, http.StatusBadRequest, "isbn and friend_id required")
		return
	}

	borrowDate, err := time.Parse(store.DateLayout, req.BorrowDate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "borrow_date must be YYYY-MM-DD")
		return
	}
	dueDate, err := time.Parse(store.DateLayout, req.DueDate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}

	var reminderDate *time.Time
	if req.ReminderDate != "" {
		rd, err := time.Parse(store.DateLayout, req.ReminderDate)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "reminder_date must be YYYY-MM-DD")
			return
		}
		reminderDate = &rd
	}

	loan, err := store.Borrow(r.Context(), h.DB, req.ISBN, req.FriendID, borrowDate, dueDate, reminderDate)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, loan)
}

// Return handles POST /api/loans/return.
func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ISBN == "" || req.FriendID <= 0 {
		jsonError(w, http.StatusBadRequest, "isbn and friend_id required")
		return
	}

	if err := store.Return(r.Context(), h.DB, req.ISBN, req.FriendID); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "book returned"})
}

// ListOverdue handles GET /api/loans/overdue.
func (h *LoansHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := store.ListOverdue(r.Context(), h.DB, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// ListReminders handles GET /api/reminders: open loans whose reminder date is
// today, one row per contact of the borrowing friend.
func (h *LoansHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := store.ListDueReminders(r.Context(), h.DB, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	jsonResponse(w, http.StatusOK, reminders)
}

// ClearReminder handles DELETE /api/loans/{id}/reminder.
func (h *LoansHandler) ClearReminder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	if err := store.ClearReminder(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "reminder cleared"})
}
