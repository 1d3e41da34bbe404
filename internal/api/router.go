package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	booksHandler := &BooksHandler{DB: db}
	friendsHandler := &FriendsHandler{DB: db}
	loansHandler := &LoansHandler{DB: db}

	// Books.
	mux.HandleFunc("GET /api/books", booksHandler.List)
	mux.HandleFunc("POST /api/books", booksHandler.Create)
	mux.HandleFunc("GET /api/books/{isbn}", booksHandler.Get)
	mux.HandleFunc("PUT /api/books/{isbn}", booksHandler.Update)
	mux.HandleFunc("DELETE /api/books/{isbn}", booksHandler.Delete)
	mux.HandleFunc("PUT /api/books/{isbn}/cover", booksHandler.UploadCover)
	mux.HandleFunc("GET /api/books/{isbn}/cover", booksHandler.GetCover)

	// Friends and contacts.
	mux.HandleFunc("GET /api/friends", friendsHandler.List)
	mux.HandleFunc("POST /api/friends", friendsHandler.Create)
	mux.HandleFunc("GET /api/friends/{id}", friendsHandler.Get)
	mux.HandleFunc("PUT /api/friends/{id}", friendsHandler.Update)
	mux.HandleFunc("DELETE /api/friends/{id}", friendsHandler.Delete)
	mux.HandleFunc("GET /api/friends/{id}/capacity", friendsHandler.GetCapacity)
	mux.HandleFunc("GET /api/friends/{id}/loans", friendsHandler.GetLoans)
	mux.HandleFunc("GET /api/friends/{id}/contacts", friendsHandler.GetContacts)
	mux.HandleFunc("POST /api/friends/{id}/contacts", friendsHandler.AddContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", friendsHandler.DeleteContact)

	// Loans and reminders.
	mux.HandleFunc("GET /api/loans", loansHandler.List)
	mux.HandleFunc("POST /api/loans", loansHandler.Borrow)
	mux.HandleFunc("POST /api/loans/return", loansHandler.Return)
	mux.HandleFunc("GET /api/loans/overdue", loansHandler.ListOverdue)
	mux.HandleFunc("GET /api/reminders", loansHandler.ListReminders)
	mux.HandleFunc("DELETE /api/loans/{id}/reminder", loansHandler.ClearReminder)

	return mux
}
