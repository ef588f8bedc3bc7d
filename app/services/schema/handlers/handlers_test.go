package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/chaindb/app/services/schema/handlers"
	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type lister []string

func (l lister) Keys() ([]string, error) {
	return l, nil
}

func newMux() http.Handler {
	src := tabledef.MemorySource{
		"T": {
			"CREATE TABLE T(",
			"LinkID INT AUTO_INCREMENT PRIMARY KEY,",
			"ScanProcessID INT NOT NULL,",
			"CreatedAt TIMESTAMP NULL);",
		},
		"broken": {"LinkID INT);"},
	}

	return handlers.APIMux(handlers.APIMuxConfig{
		Shutdown:   make(chan os.Signal, 1),
		Log:        zap.NewNop().Sugar(),
		Tables:     lister{"T", "broken"},
		Source:     src,
		CORSOrigin: "*",
	})
}

func Test_Routes(t *testing.T) {
	type table struct {
		name   string
		path   string
		status int
		body   string
	}

	tt := []table{
		{name: "list", path: "/v1/tables", status: http.StatusOK, body: `"tables":["T","broken"]`},
		{name: "query", path: "/v1/tables/T", status: http.StatusOK, body: `"primary_key":"LinkID"`},
		{name: "columns", path: "/v1/tables/T/columns?kind=notnull", status: http.StatusOK, body: `"columns":["ScanProcessID"]`},
		{name: "default kind", path: "/v1/tables/T/columns", status: http.StatusOK, body: `"kind":"all"`},
		{name: "bad kind", path: "/v1/tables/T/columns?kind=pk", status: http.StatusBadRequest, body: `unknown column kind`},
		{name: "missing", path: "/v1/tables/nope", status: http.StatusNotFound, body: `table definition not found`},
		{name: "malformed", path: "/v1/tables/broken", status: http.StatusUnprocessableEntity, body: `malformed table definition`},
	}

	mux := newMux()

	t.Log("Given the need to serve table definitions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen requesting %s.", testID, tst.path)
			{
				f := func(t *testing.T) {
					r := httptest.NewRequest(http.MethodGet, tst.path, nil)
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, r)

					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code: got %d: %s", failed, testID, tst.status, w.Code, w.Body.String())
					}
					t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, tst.status)

					if !strings.Contains(w.Body.String(), tst.body) {
						t.Fatalf("\t%s\tTest %d:\tShould find %s in the body: got %s", failed, testID, tst.body, w.Body.String())
					}
					t.Logf("\t%s\tTest %d:\tShould find %s in the body.", success, testID, tst.body)

					if w.Header().Get("Access-Control-Allow-Origin") != "*" {
						t.Fatalf("\t%s\tTest %d:\tShould set the CORS origin.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould set the CORS origin.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_QueryTable(t *testing.T) {
	t.Log("Given the need to describe a table.")
	{
		r := httptest.NewRequest(http.MethodGet, "/v1/tables/T", nil)
		w := httptest.NewRecorder()
		newMux().ServeHTTP(w, r)

		var got struct {
			Key        string `json:"key"`
			Name       string `json:"name"`
			PrimaryKey string `json:"primary_key"`
			Columns    struct {
				All     []string `json:"all"`
				NotNull []string `json:"not_null"`
				NonPK   []string `json:"non_pk"`
			} `json:"columns"`
		}
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %v", failed, err)
		}

		if got.Key != "T" || got.Name != "T" || got.PrimaryKey != "LinkID" {
			t.Fatalf("\t%s\tShould describe the table: got %+v", failed, got)
		}
		t.Logf("\t%s\tShould describe the table.", success)

		if diff := cmp.Diff([]string{"LinkID", "ScanProcessID", "CreatedAt"}, got.Columns.All); diff != "" {
			t.Fatalf("\t%s\tShould list all columns. Diff:\n%s", failed, diff)
		}

		if diff := cmp.Diff([]string{"ScanProcessID", "CreatedAt"}, got.Columns.NonPK); diff != "" {
			t.Fatalf("\t%s\tShould list non primary key columns. Diff:\n%s", failed, diff)
		}
		t.Logf("\t%s\tShould list the column sets.", success)
	}
}

func Test_DDL(t *testing.T) {
	t.Log("Given the need to fetch the rendered DDL.")
	{
		r := httptest.NewRequest(http.MethodGet, "/v1/tables/T/ddl", nil)
		w := httptest.NewRecorder()
		newMux().ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a 200 status code: got %d", failed, w.Code)
		}

		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Fatalf("\t%s\tShould respond with plain text: got %s", failed, ct)
		}
		t.Logf("\t%s\tShould respond with plain text.", success)

		exp := "CREATE TABLE T(\n\tLinkID INT AUTO_INCREMENT PRIMARY KEY,\n\tScanProcessID INT NOT NULL,\n\tCreatedAt TIMESTAMP NULL);\n"
		if diff := cmp.Diff(exp, w.Body.String()); diff != "" {
			t.Fatalf("\t%s\tShould return the rendered definition. Diff:\n%s", failed, diff)
		}
		t.Logf("\t%s\tShould return the rendered definition.", success)
	}
}

func Test_Preflight(t *testing.T) {
	t.Log("Given the need to accept CORS preflight requests.")
	{
		r := httptest.NewRequest(http.MethodOptions, "/v1/preflight", nil)
		w := httptest.NewRecorder()
		newMux().ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a 200 status code: got %d", failed, w.Code)
		}

		if w.Header().Get("Access-Control-Allow-Methods") != "GET, OPTIONS" {
			t.Fatalf("\t%s\tShould advertise the allowed methods: got %v", failed, w.Header())
		}
		t.Logf("\t%s\tShould advertise the allowed methods.", success)
	}
}
