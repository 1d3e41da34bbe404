package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/jvidmar/knjiznica/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.Dashboard)
	mux.HandleFunc("POST /reminders/{id}/clear", s.ClearReminderSubmit)

	mux.HandleFunc("GET /books", s.BooksPage)
	mux.HandleFunc("POST /books", s.BookCreateSubmit)
	mux.HandleFunc("GET /books/{isbn}", s.BookDetailPage)
	mux.HandleFunc("POST /books/{isbn}", s.BookUpdateSubmit)
	mux.HandleFunc("POST /books/{isbn}/delete", s.BookDeleteSubmit)
	mux.HandleFunc("POST /books/{isbn}/cover", s.BookCoverSubmit)
	mux.HandleFunc("GET /books/{isbn}/cover", s.BookCoverGet)

	mux.HandleFunc("GET /friends", s.FriendsPage)
	mux.HandleFunc("POST /friends", s.FriendCreateSubmit)
	mux.HandleFunc("GET /friends/{id}", s.FriendDetailPage)
	mux.HandleFunc("POST /friends/{id}", s.FriendUpdateSubmit)
	mux.HandleFunc("POST /friends/{id}/delete", s.FriendDeleteSubmit)
	mux.HandleFunc("POST /friends/{id}/contacts", s.ContactAddSubmit)
	mux.HandleFunc("POST /contacts/{id}/delete", s.ContactDeleteSubmit)

	mux.HandleFunc("GET /loans", s.LoansPage)
	mux.HandleFunc("POST /loans", s.BorrowSubmit)
	mux.HandleFunc("POST /loans/return", s.ReturnSubmit)

	return mux, nil
}
