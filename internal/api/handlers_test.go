package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const handlerTestPassword = "Correct-Horse-42"

func createWidgets(t *testing.T, h http.Handler) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/tables", map[string]any{
		"table_name": "widgets",
		"columns": []map[string]any{
			{"name": "id", "data_type": "INTEGER", "constraints": []string{"PRIMARY KEY"}},
			{"name": "name", "data_type": "VARCHAR(64)", "constraints": []string{"NOT NULL"}},
			{"name": "price", "data_type": "DECIMAL(10,2)"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create table status = %d, body = %s", w.Code, w.Body.String())
	}
}

// ─── Table Endpoint Tests ──────────────────────────────────────────

func TestTables_Lifecycle(t *testing.T) {
	router := testServer(t).buildRouter()
	createWidgets(t, router)

	w := do(t, router, http.MethodPost, "/v1/tables/widgets/rows",
		`[{"id": 1, "name": "widget", "price": 2.5}, {"id": 2, "name": "gadget"}]`)
	if w.Code != http.StatusCreated {
		t.Fatalf("insert rows status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("insert rows body = %q, want empty", w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/custom", map[string]string{"query": "SELECT id, name, price FROM widgets ORDER BY id"})
	if w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d, body = %s", w.Code, w.Body.String())
	}
	want := `[{"id":1,"name":"widget","price":"2.5"},{"id":2,"name":"gadget","price":null}]`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("fetch body = %s, want %s", got, want)
	}

	w = do(t, router, http.MethodDelete, "/v1/tables/widgets", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("drop status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/v1/custom", map[string]string{"query": "SELECT * FROM widgets"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("fetch after drop status = %d, want 500", w.Code)
	}
	e := decodeError(t, w)
	if e.Code != ErrCodeDatabase || e.Message != databaseErrorMessage {
		t.Errorf("error = %+v, want %s/%q", e, ErrCodeDatabase, databaseErrorMessage)
	}
}

func TestCreateTable_Validation(t *testing.T) {
	router := testServer(t).buildRouter()

	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{
			name:    "empty name",
			body:    map[string]any{"table_name": "", "columns": []map[string]any{{"name": "id", "data_type": "INT"}}},
			wantMsg: "Table name cannot be empty",
		},
		{
			name:    "no columns",
			body:    map[string]any{"table_name": "t", "columns": []map[string]any{}},
			wantMsg: "At least one column is required",
		},
		{
			name:    "bad table name",
			body:    map[string]any{"table_name": "t; DROP TABLE users", "columns": []map[string]any{{"name": "id", "data_type": "INT"}}},
			wantMsg: "invalid table name",
		},
		{
			name:    "bad column name",
			body:    map[string]any{"table_name": "t", "columns": []map[string]any{{"name": "1id", "data_type": "INT"}}},
			wantMsg: "invalid column name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/v1/tables", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			e := decodeError(t, w)
			if e.Code != ErrCodeValidation {
				t.Errorf("code = %q, want %q", e.Code, ErrCodeValidation)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestCreateTable_InvalidJSON(t *testing.T) {
	router := testServer(t).buildRouter()

	w := do(t, router, http.MethodPost, "/v1/tables", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeBadRequest {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeBadRequest)
	}
}

func TestDropTable_EmptyName(t *testing.T) {
	router := testServer(t).buildRouter()

	w := do(t, router, http.MethodDelete, "/v1/tables/", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Message, "table name cannot be empty") {
		t.Errorf("message = %q", e.Message)
	}
}

func TestInsertRows_Validation(t *testing.T) {
	router := testServer(t).buildRouter()
	createWidgets(t, router)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"no rows", `[]`, "At least one row is required"},
		{"empty row", `[{}]`, "Row data cannot be empty"},
		{"bad column", `[{"na me": 1}]`, "invalid column name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/v1/tables/widgets/rows", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
			if e := decodeError(t, w); !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestInsertRows_NotAnArray(t *testing.T) {
	router := testServer(t).buildRouter()

	w := do(t, router, http.MethodPost, "/v1/tables/widgets/rows", `{"id": 1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// ─── Custom Query Tests ────────────────────────────────────────────

func TestCustom_Execute(t *testing.T) {
	router := testServer(t).buildRouter()
	createWidgets(t, router)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantRows   int64
	}{
		{"insert", "INSERT INTO widgets (id, name) VALUES (10, 'a'), (11, 'b')", http.StatusCreated, 2},
		{"update", "UPDATE widgets SET name = 'c' WHERE id = 10", http.StatusOK, 1},
		{"delete", "DELETE FROM widgets WHERE id = 11", http.StatusOK, 1},
		// DDL leaves the driver's change counter untouched; -1 skips the check.
		{"create", "CREATE TABLE gizmos (id INTEGER)", http.StatusCreated, -1},
		{"drop", "DROP TABLE gizmos", http.StatusOK, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/v1/custom", map[string]string{"query": tt.query})
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var res struct {
				RowsAffected int64 `json:"rows_affected"`
				LastInsertID int64 `json:"last_insert_id"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tt.wantRows >= 0 && res.RowsAffected != tt.wantRows {
				t.Errorf("rows_affected = %d, want %d", res.RowsAffected, tt.wantRows)
			}
		})
	}
}

func TestCustom_WrongMethod(t *testing.T) {
	router := testServer(t).buildRouter()

	w := do(t, router, http.MethodGet, "/v1/custom", map[string]string{"query": "DELETE FROM users"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("GET with DELETE status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Message, "Only SELECT queries are allowed") {
		t.Errorf("message = %q", e.Message)
	}

	w = do(t, router, http.MethodPost, "/v1/custom", map[string]string{"query": "SELECT 1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST with SELECT status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Message, "SELECT queries should use GET method instead") {
		t.Errorf("message = %q", e.Message)
	}
}

func TestCustom_EmptyQuery(t *testing.T) {
	router := testServer(t).buildRouter()

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(t, router, method, "/v1/custom", map[string]string{"query": "   "})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", method, w.Code)
		}
		if e := decodeError(t, w); !strings.Contains(e.Message, "Query cannot be empty") {
			t.Errorf("%s message = %q", method, e.Message)
		}
	}
}

func TestCustom_QueryParameterFallback(t *testing.T) {
	router := testServer(t).buildRouter()
	createWidgets(t, router)
	do(t, router, http.MethodPost, "/v1/tables/widgets/rows", `[{"id": 7, "name": "sprocket"}]`)

	req := httptest.NewRequest(http.MethodGet, "/v1/custom?query=SELECT+id,+name+FROM+widgets", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	want := `[{"id":7,"name":"sprocket"}]`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestCustom_EmptyResult(t *testing.T) {
	router := testServer(t).buildRouter()
	createWidgets(t, router)

	w := do(t, router, http.MethodGet, "/v1/custom", map[string]string{"query": "SELECT * FROM widgets"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

// ─── Auth Endpoint Tests ───────────────────────────────────────────

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type userBody struct {
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type issuedBody struct {
	UserUUID  string  `json:"user_uuid"`
	APIKey    string  `json:"api_key"`
	CreatedAt string  `json:"created_at"`
	ExpiresAt *string `json:"expires_at"`
}

func signUp(t *testing.T, h http.Handler, email string) userBody {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/auth/sign-up", map[string]string{"email": email, "password": handlerTestPassword})
	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up status = %d, body = %s", w.Code, w.Body.String())
	}
	var env envelope[userBody]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Message != "User created successfully" {
		t.Errorf("message = %q", env.Message)
	}
	return env.Data
}

func signIn(t *testing.T, h http.Handler, email string) issuedBody {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": email, "password": handlerTestPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status = %d, body = %s", w.Code, w.Body.String())
	}
	var env envelope[issuedBody]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Message != "Sign in successful" {
		t.Errorf("message = %q", env.Message)
	}
	return env.Data
}

func getMetadata(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/user/metadata", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuth_Flow(t *testing.T) {
	router := testServer(t).buildRouter()

	user := signUp(t, router, "ada@example.com")
	if user.UUID == "" || user.Email != "ada@example.com" || user.CreatedAt == "" {
		t.Fatalf("sign-up data = %+v", user)
	}

	issued := signIn(t, router, "ada@example.com")
	if issued.UserUUID != user.UUID {
		t.Errorf("user_uuid = %q, want %q", issued.UserUUID, user.UUID)
	}
	if !strings.HasPrefix(issued.APIKey, "ak_prod_") || len(issued.APIKey) != 52 {
		t.Errorf("api_key = %q, want ak_prod_ plus 44 characters", issued.APIKey)
	}
	if issued.ExpiresAt == nil {
		t.Error("expires_at = null, want a timestamp")
	}

	w := getMetadata(router, "Bearer "+issued.APIKey)
	if w.Code != http.StatusOK {
		t.Fatalf("metadata status = %d, body = %s", w.Code, w.Body.String())
	}
	var env envelope[userBody]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Data.UUID != user.UUID || env.Data.Email != user.Email {
		t.Errorf("metadata = %+v, want %+v", env.Data, user)
	}
	if env.Message != "User metadata retrieved successfully" {
		t.Errorf("message = %q", env.Message)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("metadata body leaks password hash: %s", w.Body.String())
	}
}

func TestSignUp_Validation(t *testing.T) {
	router := testServer(t).buildRouter()

	tests := []struct {
		name    string
		body    map[string]string
		wantMsg string
	}{
		{"missing email", map[string]string{"password": handlerTestPassword}, "email is required"},
		{"malformed email", map[string]string{"email": "not-an-email", "password": handlerTestPassword}, "email must be a valid email address"},
		{"empty password", map[string]string{"email": "a@example.com", "password": ""}, "Password cannot be empty"},
		{"weak password", map[string]string{"email": "a@example.com", "password": "short"}, "at least 12 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/v1/auth/sign-up", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Code != ErrCodeValidation {
				t.Errorf("code = %q, want %q", e.Code, ErrCodeValidation)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestSignIn_WrongCredentials(t *testing.T) {
	router := testServer(t).buildRouter()
	signUp(t, router, "ada@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{"unknown email", "nobody@example.com"},
		{"wrong password", "ada@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password := "Wrong-Horse-43"
			w := do(t, router, http.MethodPost, "/v1/auth/sign-in", map[string]string{"email": tt.email, "password": password})
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401, body = %s", w.Code, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Code != ErrCodeUnauthorized {
				t.Errorf("code = %q, want %q", e.Code, ErrCodeUnauthorized)
			}
			if !strings.Contains(e.Message, "Invalid email or password") {
				t.Errorf("message = %q", e.Message)
			}
		})
	}
}

func TestUserMetadata_Rejections(t *testing.T) {
	router := testServer(t).buildRouter()

	unknown := "ak_prod_" + strings.Repeat("A", 43) + "="

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no header", "", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"malformed key", "Bearer not-a-key", http.StatusBadRequest, ErrCodeInvalidFormat},
		{"unknown key", "Bearer " + unknown, http.StatusUnauthorized, ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getMetadata(router, tt.header)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if e := decodeError(t, w); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}
