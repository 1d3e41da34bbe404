package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// ReminderCard is one dashboard reminder: a loan due a nudge today with every
// contact method of the borrowing friend attached.
type ReminderCard struct {
	LoanID     int64
	ISBN       string
	Title      string
	DueDate    string
	FriendName string
	Contacts   []model.Contact
}

// groupReminders folds the per-contact reminder rows into one card per loan,
// preserving due-date order.
func groupReminders(rows []model.Reminder) []ReminderCard {
	var cards []ReminderCard
	index := make(map[int64]int)

	for _, r := range rows {
		i, ok := index[r.LoanID]
		if !ok {
			i = len(cards)
			index[r.LoanID] = i
			cards = append(cards, ReminderCard{
				LoanID:     r.LoanID,
				ISBN:       r.ISBN,
				Title:      r.Title,
				DueDate:    r.DueDate,
				FriendName: r.FirstName + " " + r.LastName,
			})
		}
		if r.ContactID != 0 {
			cards[i].Contacts = append(cards[i].Contacts, model.Contact{
				ID:    r.ContactID,
				Type:  r.ContactType,
				Value: r.ContactValue,
			})
		}
	}
	return cards
}

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	reminders, err := store.ListDueReminders(r.Context(), s.DB, now)
	if err != nil {
		slog.Error("failed to list reminders for dashboard", "error", err)
	}
	overdue, err := store.ListOverdue(r.Context(), s.DB, now)
	if err != nil {
		slog.Error("failed to list overdue loans for dashboard", "error", err)
	}

	totalBooks, err := store.CountBooks(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to count books", "error", err)
	}
	onLoan, err := store.CountOnLoan(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to count loans", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Reminders  []ReminderCard
		Overdue    []model.Loan
		TotalBooks int
		OnLoan     int
	}{
		PageData:   PageData{Title: "Dashboard"},
		Reminders:  groupReminders(reminders),
		Overdue:    overdue,
		TotalBooks: totalBooks,
		OnLoan:     onLoan,
	})
}

// ClearReminderSubmit handles POST /reminders/{id}/clear.
func (s *Server) ClearReminderSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	if err := store.ClearReminder(r.Context(), s.DB, id); err != nil {
		slog.Warn("failed to clear reminder", "loan", id, "error", err)
	} else {
		slog.Info("reminder cleared", "loan", id)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
