package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// LoansPage handles GET /loans.
func (s *Server) LoansPage(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	active, err := store.ListActiveLoans(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list active loans", "error", err)
	}
	overdue, err := store.ListOverdue(r.Context(), s.DB, now)
	if err != nil {
		slog.Error("failed to list overdue loans", "error", err)
	}
	available, err := store.ListBooks(r.Context(), s.DB, true)
	if err != nil {
		slog.Error("failed to list available books", "error", err)
	}
	friends, err := store.ListFriends(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list friends", "error", err)
	}

	s.Templates.Render(w, "loans.html", &struct {
		PageData
		Active    []model.Loan
		Overdue   []model.Loan
		Available []model.Book
		Friends   []model.Friend
		Today     string
	}{
		PageData:  PageData{Title: "Loans", Error: r.URL.Query().Get("error")},
		Active:    active,
		Overdue:   overdue,
		Available: available,
		Friends:   friends,
		Today:     now.Format(store.DateLayout),
	})
}

// BorrowSubmit handles POST /loans.
func (s *Server) BorrowSubmit(w http.ResponseWriter, r *http.Request) {
	isbn := r.FormValue("isbn")
	friendID, _ := strconv.ParseInt(r.FormValue("friend_id"), 10, 64)

	borrowDate, err := time.Parse(store.DateLayout, r.FormValue("borrow_date"))
	if err != nil {
		redirectError(w, r, "/loans", "borrow date must be YYYY-MM-DD")
		return
	}
	dueDate, err := time.Parse(store.DateLayout, r.FormValue("due_date"))
	if err != nil {
		redirectError(w, r, "/loans", "due date must be YYYY-MM-DD")
		return
	}

	var reminderDate *time.Time
	if v := r.FormValue("reminder_date"); v != "" {
		rd, err := time.Parse(store.DateLayout, v)
		if err != nil {
			redirectError(w, r, "/loans", "reminder date must be YYYY-MM-DD")
			return
		}
		reminderDate = &rd
	}

	loan, err := store.Borrow(r.Context(), s.DB, isbn, friendID, borrowDate, dueDate, reminderDate)
	if err != nil {
		slog.Warn("failed to create loan", "isbn", isbn, "friend", friendID, "error", err)
		redirectError(w, r, "/loans", friendlyError(err, "failed to create loan"))
		return
	}

	slog.Info("loan created", "loan", loan.ID, "isbn", isbn, "friend", friendID, "due", loan.DueDate)
	http.Redirect(w, r, "/loans", http.StatusSeeOther)
}

// ReturnSubmit handles POST /loans/return.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	isbn := r.FormValue("isbn")
	friendID, _ := strconv.ParseInt(r.FormValue("friend_id"), 10, 64)

	if err := store.Return(r.Context(), s.DB, isbn, friendID); err != nil {
		slog.Warn("failed to return book", "isbn", isbn, "friend", friendID, "error", err)
		redirectError(w, r, "/loans", friendlyError(err, "failed to return book"))
		return
	}

	slog.Info("book returned", "isbn", isbn, "friend", friendID)
	http.Redirect(w, r, "/loans", http.StatusSeeOther)
}
