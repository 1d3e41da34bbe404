package api

import (
	"database/sql"
	"net/http"

	"github.com/jvidmar/knjiznica/internal/imaging"
	"github.com/jvidmar/knjiznica/internal/model"
	"github.com/jvidmar/knjiznica/internal/store"
)

// BooksHandler handles book CRUD endpoints.
type BooksHandler struct {
	DB *sql.DB
}

type bookRequest struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	Condition     string `json:"condition"`
	ShelfLocation string `json:"shelf_location"`
	ShelfRow      string `json:"shelf_row"`
}

// List handles GET /api/books. The "available" query parameter limits the
// result to books currently in stock.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	availableOnly := r.URL.Query().Get("available") == "true"
	books, err := store.ListBooks(r.Context(), h.DB, availableOnly)
	if err != nil {
		storeError(w, err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ISBN == "" || req.Title == "" || req.Author == "" {
		jsonError(w, http.StatusBadRequest, "isbn, title, and author required")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, model.Book{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		Condition:     req.Condition,
		ShelfLocation: req.ShelfLocation,
		ShelfRow:      req.ShelfRow,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, book)
}

// Get handles GET /api/books/{isbn}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := store.GetBook(r.Context(), h.DB, r.PathValue("isbn"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{isbn}.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" || req.Author == "" {
		jsonError(w, http.StatusBadRequest, "title and author required")
		return
	}

	if err := store.UpdateBook(r.Context(), h.DB, isbn, model.Book{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		Condition:     req.Condition,
		ShelfLocation: req.ShelfLocation,
		ShelfRow:      req.ShelfRow,
	}); err != nil {
		storeError(w, err)
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, isbn)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{isbn}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteBook(r.Context(), h.DB, r.PathValue("isbn")); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/books/{isbn}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	cover, err := imaging.ProcessCover(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, isbn, cover.Data, cover.MIME); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "cover uploaded"})
}

// GetCover handles GET /api/books/{isbn}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetBookCover(r.Context(), h.DB, r.PathValue("isbn"))
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
