package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// FriendsHandler handles friend and contact endpoints.
type FriendsHandler struct {
	DB *sql.DB
}

type contactRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type createFriendRequest struct {
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	MaxLoans  int              `json:"max_loans"`
	Contacts  []contactRequest `json:"contacts"`
}

type updateFriendRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	MaxLoans  int    `json:"max_loans"`
}

// List handles GET /api/friends.
func (h *FriendsHandler) List(w http.ResponseWriter, r *http.Request) {
	friends, err := store.ListFriends(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if friends == nil {
		friends = []model.Friend{}
	}
	jsonResponse(w, http.StatusOK, friends)
}

// Create handles POST /api/friends. Contacts may be bundled with the friend;
// they are created in the same transaction.
func (h *FriendsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		jsonError(w, http.StatusBadRequest, "first_name and last_name required")
		return
	}
	if req.MaxLoans < 0 {
		jsonError(w, http.StatusBadRequest, "max_loans must not be negative")
		return
	}

	contacts := make([]model.Contact, 0, len(req.Contacts))
	for _, c := range req.Contacts {
		contacts = append(contacts, model.Contact{Type: c.Type, Value: c.Value})
	}

	friend, err := store.CreateFriend(r.Context(), h.DB, req.FirstName, req.LastName, req.MaxLoans, contacts)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, friend)
}

// Get handles GET /api/friends/{id}.
func (h *FriendsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	friend, err := store.GetFriend(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, friend)
}

// Update handles PUT /api/friends/{id}.
func (h *FriendsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	var req updateFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		jsonError(w, http.StatusBadRequest, "first_name and last_name required")
		return
	}

	if err := store.UpdateFriend(r.Context(), h.DB, id, req.FirstName, req.LastName, req.MaxLoans); err != nil {
		storeError(w, err)
		return
	}

	friend, err := store.GetFriend(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, friend)
}

// Delete handles DELETE /api/friends/{id}.
func (h *FriendsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	if err := store.DeleteFriend(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "friend deleted"})
}

// GetCapacity handles GET /api/friends/{id}/capacity.
func (h *FriendsHandler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	remaining, err := store.RemainingCapacity(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"remaining": remaining})
}

// GetLoans handles GET /api/friends/{id}/loans (full loan history).
func (h *FriendsHandler) GetLoans(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	if _, err := store.GetFriend(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	loans, err := store.FriendLoanHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// GetContacts handles GET /api/friends/{id}/contacts.
func (h *FriendsHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	contacts, err := store.ListContacts(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	jsonResponse(w, http.StatusOK, contacts)
}

// AddContact handles POST /api/friends/{id}/contacts.
func (h *FriendsHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := store.AddContact(r.Context(), h.DB, id, req.Type, req.Value)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, contact)
}

// DeleteContact handles DELETE /api/contacts/{id}.
func (h *FriendsHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := store.DeleteContact(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}
