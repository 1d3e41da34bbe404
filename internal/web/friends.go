package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// FriendsPage handles GET /friends.
func (s *Server) FriendsPage(w http.ResponseWriter, r *http.Request) {
	friends, err := store.ListFriends(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list friends", "error", err)
	}

	s.Templates.Render(w, "friends.html", &struct {
		PageData
		Friends []model.Friend
	}{
		PageData: PageData{Title: "Friends", Error: r.URL.Query().Get("error")},
		Friends:  friends,
	})
}

// FriendCreateSubmit handles POST /friends. Up to three contact rows come in
// with the form; blank ones are dropped by the store.
func (s *Server) FriendCreateSubmit(w http.ResponseWriter, r *http.Request) {
	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	maxLoans, _ := strconv.Atoi(r.FormValue("max_loans"))

	if firstName == "" || lastName == "" {
		redirectError(w, r, "/friends", "first and last name are required")
		return
	}

	var contacts []model.Contact
	for i := range 3 {
		contacts = append(contacts, model.Contact{
			Type:  r.FormValue(fmt.Sprintf("contact_type_%d", i)),
			Value: r.FormValue(fmt.Sprintf("contact_value_%d", i)),
		})
	}

	friend, err := store.CreateFriend(r.Context(), s.DB, firstName, lastName, maxLoans, contacts)
	if err != nil {
		slog.Warn("failed to create friend", "error", err)
		redirectError(w, r, "/friends", friendlyError(err, "failed to add friend"))
		return
	}

	slog.Info("friend created", "friend", friend.Name(), "max_loans", maxLoans)
	http.Redirect(w, r, fmt.Sprintf("/friends/%d", friend.ID), http.StatusSeeOther)
}

// FriendDetailPage handles GET /friends/{id}.
func (s *Server) FriendDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	friend, err := store.GetFriend(r.Context(), s.DB, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "friend not found", http.StatusNotFound)
		} else {
			slog.Error("failed to get friend", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	contacts, err := store.ListContacts(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list contacts", "error", err)
	}
	loans, err := store.FriendLoanHistory(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list friend loans", "error", err)
	}
	remaining, err := store.RemainingCapacity(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get remaining capacity", "error", err)
	}

	s.Templates.Render(w, "friend_detail.html", &struct {
		PageData
		Friend    *model.Friend
		Contacts  []model.Contact
		Loans     []model.Loan
		Remaining int
	}{
		PageData:  PageData{Title: friend.Name(), Error: r.URL.Query().Get("error")},
		Friend:    friend,
		Contacts:  contacts,
		Loans:     loans,
		Remaining: remaining,
	})
}

// FriendUpdateSubmit handles POST /friends/{id}.
func (s *Server) FriendUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	maxLoans, _ := strconv.Atoi(r.FormValue("max_loans"))

	if err := store.UpdateFriend(r.Context(), s.DB, id, firstName, lastName, maxLoans); err != nil {
		slog.Warn("failed to update friend", "friend", id, "error", err)
		redirectError(w, r, fmt.Sprintf("/friends/%d", id), friendlyError(err, "failed to update friend"))
		return
	}

	slog.Info("friend updated", "friend", id, "max_loans", maxLoans)
	http.Redirect(w, r, fmt.Sprintf("/friends/%d", id), http.StatusSeeOther)
}

// FriendDeleteSubmit handles POST /friends/{id}/delete.
func (s *Server) FriendDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteFriend(r.Context(), s.DB, id); err != nil {
		slog.Warn("failed to delete friend", "friend", id, "error", err)
		redirectError(w, r, fmt.Sprintf("/friends/%d", id), friendlyError(err, "failed to delete friend"))
		return
	}

	slog.Info("friend deleted", "friend", id)
	http.Redirect(w, r, "/friends", http.StatusSeeOther)
}

// ContactAddSubmit handles POST /friends/{id}/contacts.
func (s *Server) ContactAddSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	ctype := r.FormValue("type")
	value := r.FormValue("value")

	if _, err := store.AddContact(r.Context(), s.DB, id, ctype, value); err != nil {
		slog.Warn("failed to add contact", "friend", id, "error", err)
		redirectError(w, r, fmt.Sprintf("/friends/%d", id), friendlyError(err, "failed to add contact"))
		return
	}

	slog.Info("contact added", "friend", id, "type", ctype)
	http.Redirect(w, r, fmt.Sprintf("/friends/%d", id), http.StatusSeeOther)
}

// ContactDeleteSubmit handles POST /contacts/{id}/delete.
func (s *Server) ContactDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	friendID, _ := strconv.ParseInt(r.FormValue("friend_id"), 10, 64)

	if err := store.DeleteContact(r.Context(), s.DB, id); err != nil {
		slog.Warn("failed to delete contact", "contact", id, "error", err)
	} else {
		slog.Info("contact deleted", "contact", id)
	}

	if friendID > 0 {
		http.Redirect(w, r, fmt.Sprintf("/friends/%d", friendID), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/friends", http.StatusSeeOther)
}
