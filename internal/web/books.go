package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jvidmar/knjiznica/internal/imaging"
	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// BooksPage handles GET /books.
func (s *Server) BooksPage(w http.ResponseWriter, r *http.Request) {
	books, err := store.ListBooks(r.Context(), s.DB, false)
	if err != nil {
		slog.Error("failed to list books", "error", err)
	}

	s.Templates.Render(w, "books.html", &struct {
		PageData
		Books []model.Book
	}{
		PageData: PageData{Title: "Books", Error: r.URL.Query().Get("error")},
		Books:    books,
	})
}

// BookCreateSubmit handles POST /books.
func (s *Server) BookCreateSubmit(w http.ResponseWriter, r *http.Request) {
	book := model.Book{
		ISBN:          r.FormValue("isbn"),
		Title:         r.FormValue("title"),
		Author:        r.FormValue("author"),
		Genre:         r.FormValue("genre"),
		Condition:     r.FormValue("condition"),
		ShelfLocation: r.FormValue("shelf_location"),
		ShelfRow:      r.FormValue("shelf_row"),
	}

	if book.ISBN == "" || book.Title == "" || book.Author == "" {
		redirectError(w, r, "/books", "ISBN, title, and author are required")
		return
	}

	if _, err := store.CreateBook(r.Context(), s.DB, book); err != nil {
		slog.Warn("failed to create book", "isbn", book.ISBN, "error", err)
		redirectError(w, r, "/books", friendlyError(err, "failed to add book"))
		return
	}

	slog.Info("book created", "isbn", book.ISBN, "title", book.Title)
	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

// BookDetailPage handles GET /books/{isbn}.
func (s *Server) BookDetailPage(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	book, err := store.GetBook(r.Context(), s.DB, isbn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "book not found", http.StatusNotFound)
		} else {
			slog.Error("failed to get book", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	s.Templates.Render(w, "book_detail.html", &struct {
		PageData
		Book *model.Book
	}{
		PageData: PageData{Title: book.Title, Error: r.URL.Query().Get("error")},
		Book:     book,
	})
}

// BookUpdateSubmit handles POST /books/{isbn}.
func (s *Server) BookUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	book := model.Book{
		Title:         r.FormValue("title"),
		Author:        r.FormValue("author"),
		Genre:         r.FormValue("genre"),
		Condition:     r.FormValue("condition"),
		ShelfLocation: r.FormValue("shelf_location"),
		ShelfRow:      r.FormValue("shelf_row"),
	}

	if err := store.UpdateBook(r.Context(), s.DB, isbn, book); err != nil {
		slog.Warn("failed to update book", "isbn", isbn, "error", err)
		redirectError(w, r, "/books/"+url.PathEscape(isbn), friendlyError(err, "failed to update book"))
		return
	}

	slog.Info("book updated", "isbn", isbn, "title", book.Title)
	http.Redirect(w, r, "/books/"+url.PathEscape(isbn), http.StatusSeeOther)
}

// BookDeleteSubmit handles POST /books/{isbn}/delete.
func (s *Server) BookDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	if err := store.DeleteBook(r.Context(), s.DB, isbn); err != nil {
		slog.Warn("failed to delete book", "isbn", isbn, "error", err)
		redirectError(w, r, "/books/"+url.PathEscape(isbn), friendlyError(err, "failed to delete book"))
		return
	}

	slog.Info("book deleted", "isbn", isbn)
	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

// BookCoverSubmit handles POST /books/{isbn}/cover.
func (s *Server) BookCoverSubmit(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		http.Error(w, "cover image required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if err != nil {
		redirectError(w, r, "/books/"+url.PathEscape(isbn), err.Error())
		return
	}

	if err := store.SetBookCover(r.Context(), s.DB, isbn, cover.Data, cover.MIME); err != nil {
		slog.Error("failed to save cover", "isbn", isbn, "error", err)
		redirectError(w, r, "/books/"+url.PathEscape(isbn), "failed to save cover")
		return
	}

	slog.Info("book cover uploaded", "isbn", isbn)
	http.Redirect(w, r, "/books/"+url.PathEscape(isbn), http.StatusSeeOther)
}

// BookCoverGet handles GET /books/{isbn}/cover.
func (s *Server) BookCoverGet(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetBookCover(r.Context(), s.DB, r.PathValue("isbn"))
	if err != nil || data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write cover response", "error", err)
	}
}

// redirectError redirects back to a page with an error message in the query.
func redirectError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, fmt.Sprintf("%s?error=%s", path, url.QueryEscape(message)), http.StatusSeeOther)
}

// friendlyError returns the error text for expected failures and a generic
// fallback for storage errors that should not leak to the page.
func friendlyError(err error, fallback string) string {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrAlreadyOnLoan),
		errors.Is(err, store.ErrCapacityExceeded),
		errors.Is(err, store.ErrConstraintViolation):
		return err.Error()
	default:
		return fallback
	}
}
