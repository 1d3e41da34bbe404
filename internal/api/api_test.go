package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvidmar/knjiznica/internal/db"
	"github.com/jvidmar/knjiznica/internal/model"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database))
	t.Cleanup(server.Close)
	return server
}

func jsonRequest(method, url string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int) *http.Response {
	t.Helper()
	req, err := jsonRequest(method, url, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	return resp
}

func createTestBook(t *testing.T, server *httptest.Server, isbn, title string) {
	t.Helper()
	resp := doJSON(t, "POST", server.URL+"/api/books", map[string]string{
		"isbn":   isbn,
		"title":  title,
		"author": "Test Author",
	}, http.StatusCreated)
	resp.Body.Close()
}

func createTestFriend(t *testing.T, server *httptest.Server, first string, maxLoans int) int64 {
	t.Helper()
	resp := doJSON(t, "POST", server.URL+"/api/friends", map[string]any{
		"first_name": first,
		"last_name":  "Tester",
		"max_loans":  maxLoans,
	}, http.StatusCreated)
	defer resp.Body.Close()

	var friend model.Friend
	json.NewDecoder(resp.Body).Decode(&friend)
	return friend.ID
}

func TestBooksAPIFlow(t *testing.T) {
	server := setupTestServer(t)

	createTestBook(t, server, "9780441172719", "Dune")

	// Duplicate ISBN conflicts.
	resp := doJSON(t, "POST", server.URL+"/api/books", map[string]string{
		"isbn": "9780441172719", "title": "Dune again", "author": "X",
	}, http.StatusConflict)
	resp.Body.Close()

	// Missing fields are rejected.
	resp = doJSON(t, "POST", server.URL+"/api/books", map[string]string{
		"isbn": "222",
	}, http.StatusBadRequest)
	resp.Body.Close()

	resp = doJSON(t, "GET", server.URL+"/api/books", nil, http.StatusOK)
	var books []model.Book
	json.NewDecoder(resp.Body).Decode(&books)
	resp.Body.Close()
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("unexpected book list: %+v", books)
	}

	resp = doJSON(t, "PUT", server.URL+"/api/books/9780441172719", map[string]string{
		"title": "Dune Messiah", "author": "Frank Herbert", "condition": model.ConditionFair,
	}, http.StatusOK)
	var updated model.Book
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Title != "Dune Messiah" || updated.Condition != model.ConditionFair {
		t.Errorf("unexpected book after update: %+v", updated)
	}

	resp = doJSON(t, "DELETE", server.URL+"/api/books/9780441172719", nil, http.StatusOK)
	resp.Body.Close()
	resp = doJSON(t, "GET", server.URL+"/api/books/9780441172719", nil, http.StatusNotFound)
	resp.Body.Close()
}

func TestFriendsAPIFlow(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/friends", map[string]any{
		"first_name": "Liane",
		"last_name":  "Novak",
		"max_loans":  2,
		"contacts": []map[string]string{
			{"type": "email", "value": "liane@example.com"},
		},
	}, http.StatusCreated)
	var friend model.Friend
	json.NewDecoder(resp.Body).Decode(&friend)
	resp.Body.Close()

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/friends/%d/contacts", server.URL, friend.ID), nil, http.StatusOK)
	var contacts []model.Contact
	json.NewDecoder(resp.Body).Decode(&contacts)
	resp.Body.Close()
	if len(contacts) != 1 || contacts[0].Value != "liane@example.com" {
		t.Errorf("unexpected contacts: %+v", contacts)
	}

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/friends/%d/capacity", server.URL, friend.ID), nil, http.StatusOK)
	var capacity map[string]int
	json.NewDecoder(resp.Body).Decode(&capacity)
	resp.Body.Close()
	if capacity["remaining"] != 2 {
		t.Errorf("remaining = %d, want 2", capacity["remaining"])
	}

	resp = doJSON(t, "DELETE", fmt.Sprintf("%s/api/contacts/%d", server.URL, contacts[0].ID), nil, http.StatusOK)
	resp.Body.Close()

	resp = doJSON(t, "GET", server.URL+"/api/friends/999", nil, http.StatusNotFound)
	resp.Body.Close()
}

func TestLoansAPIFlow(t *testing.T) {
	server := setupTestServer(t)

	createTestBook(t, server, "111", "Dune")
	createTestBook(t, server, "222", "Hyperion")
	friendID := createTestFriend(t, server, "Liane", 1)

	borrow := map[string]any{
		"isbn":        "111",
		"friend_id":   friendID,
		"borrow_date": "2024-01-01",
		"due_date":    "2024-01-15",
	}
	resp := doJSON(t, "POST", server.URL+"/api/loans", borrow, http.StatusCreated)
	var loan model.Loan
	json.NewDecoder(resp.Body).Decode(&loan)
	resp.Body.Close()
	if loan.ISBN != "111" || loan.DueDate != "2024-01-15" {
		t.Errorf("unexpected loan: %+v", loan)
	}

	// Same book again conflicts.
	resp = doJSON(t, "POST", server.URL+"/api/loans", borrow, http.StatusConflict)
	resp.Body.Close()

	// Capacity of 1 is used up.
	resp = doJSON(t, "POST", server.URL+"/api/loans", map[string]any{
		"isbn": "222", "friend_id": friendID,
		"borrow_date": "2024-01-02", "due_date": "2024-01-16",
	}, http.StatusConflict)
	resp.Body.Close()

	// Only available books show up with ?available=true.
	resp = doJSON(t, "GET", server.URL+"/api/books?available=true", nil, http.StatusOK)
	var available []model.Book
	json.NewDecoder(resp.Body).Decode(&available)
	resp.Body.Close()
	if len(available) != 1 || available[0].ISBN != "222" {
		t.Errorf("unexpected available books: %+v", available)
	}

	resp = doJSON(t, "GET", server.URL+"/api/loans", nil, http.StatusOK)
	var loans []model.Loan
	json.NewDecoder(resp.Body).Decode(&loans)
	resp.Body.Close()
	if len(loans) != 1 {
		t.Errorf("expected 1 open loan, got %d", len(loans))
	}

	returnBody := map[string]any{"isbn": "111", "friend_id": friendID}
	resp = doJSON(t, "POST", server.URL+"/api/loans/return", returnBody, http.StatusOK)
	resp.Body.Close()

	// Nothing left to return.
	resp = doJSON(t, "POST", server.URL+"/api/loans/return", returnBody, http.StatusNotFound)
	resp.Body.Close()

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/friends/%d/loans", server.URL, friendID), nil, http.StatusOK)
	var history []model.Loan
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()
	if len(history) != 1 || history[0].Open() {
		t.Errorf("expected one closed loan in history, got %+v", history)
	}
}

func TestBorrowValidation(t *testing.T) {
	server := setupTestServer(t)

	createTestBook(t, server, "111", "Dune")
	friendID := createTestFriend(t, server, "Liane", 2)

	// Malformed date.
	resp := doJSON(t, "POST", server.URL+"/api/loans", map[string]any{
		"isbn": "111", "friend_id": friendID,
		"borrow_date": "01/01/2024", "due_date": "2024-01-15",
	}, http.StatusBadRequest)
	resp.Body.Close()

	// Unknown book.
	resp = doJSON(t, "POST", server.URL+"/api/loans", map[string]any{
		"isbn": "999", "friend_id": friendID,
		"borrow_date": "2024-01-01", "due_date": "2024-01-15",
	}, http.StatusNotFound)
	resp.Body.Close()
}

func TestClearReminderEndpoint(t *testing.T) {
	server := setupTestServer(t)

	createTestBook(t, server, "111", "Dune")
	friendID := createTestFriend(t, server, "Liane", 2)

	resp := doJSON(t, "POST", server.URL+"/api/loans", map[string]any{
		"isbn": "111", "friend_id": friendID,
		"borrow_date": "2024-01-01", "due_date": "2024-01-15",
		"reminder_date": "2024-01-12",
	}, http.StatusCreated)
	var loan model.Loan
	json.NewDecoder(resp.Body).Decode(&loan)
	resp.Body.Close()
	if loan.ReminderDate != "2024-01-12" {
		t.Errorf("ReminderDate = %q, want 2024-01-12", loan.ReminderDate)
	}

	resp = doJSON(t, "DELETE", fmt.Sprintf("%s/api/loans/%d/reminder", server.URL, loan.ID), nil, http.StatusOK)
	resp.Body.Close()

	resp = doJSON(t, "DELETE", server.URL+"/api/loans/999/reminder", nil, http.StatusNotFound)
	resp.Body.Close()
}

func TestCoverUploadAndFetch(t *testing.T) {
	server := setupTestServer(t)

	createTestBook(t, server, "111", "Dune")

	img := image.NewRGBA(image.Rect(0, 0, 100, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}

	req, _ := http.NewRequest("PUT", server.URL+"/api/books/111/cover", bytes.NewReader(buf.Bytes()))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("uploading cover: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(server.URL + "/api/books/111/cover")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching cover, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	resp.Body.Close()

	// Garbage upload is rejected, book keeps no cover.
	req, _ = http.NewRequest("PUT", server.URL+"/api/books/111/cover", bytes.NewReader([]byte("junk")))
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for junk upload, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
