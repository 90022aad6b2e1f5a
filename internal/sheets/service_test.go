package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"planfact/internal/report"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = extractSpreadsheetID("https://example.com/file.xlsx")
	assert.Error(t, err)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "45306", cellString(45306.0))
	assert.Equal(t, "1234.5", cellString(1234.5))
	assert.Equal(t, "0.000001", cellString(0.000001))
	assert.Equal(t, "VS-1", cellString("VS-1"))
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "true", cellString(true))
}

// fakeSheets records API calls and answers just enough of them.
type fakeSheets struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
	io.Copy(io.Discard, r.Body)

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		json.NewEncoder(w).Encode(map[string]interface{}{
			"range":  "Invoices!A1:H2",
			"values": [][]interface{}{{"Data", "Nr"}, {45306, "VS-1", nil, "Acme", "", "K-1", 100.5, "EUR"}},
		})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sheets": []interface{}{
				map[string]interface{}{"properties": map[string]interface{}{"title": report.SheetBalances, "sheetId": 7}},
			},
		})
	case strings.HasSuffix(path, ":batchUpdate"):
		json.NewEncoder(w).Encode(map[string]interface{}{
			"replies": []interface{}{
				map[string]interface{}{"addSheet": map[string]interface{}{"properties": map[string]interface{}{"sheetId": 9}}},
			},
		})
	default:
		w.Write([]byte("{}"))
	}
}

func newTestService(t *testing.T, fake *fakeSheets) *Service {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := newService(context.Background(), "sheet-id",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestReadRows(t *testing.T) {
	s := newTestService(t, &fakeSheets{})

	rows, err := s.ReadRows(context.Background(), "Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"45306", "VS-1", "", "Acme", "", "K-1", "100.5", "EUR"}, rows[1])
}

func TestWriteReport(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestService(t, fake)

	r := &services.Report{
		Balances: []models.ContractBalance{{Client: "Acme", ContractID: "K-1", Invoiced: decimal.NewFromInt(10)}},
	}
	require.NoError(t, s.WriteReport(context.Background(), r))

	var clears, updates, batches int
	for _, c := range fake.calls {
		switch {
		case strings.HasSuffix(c, ":clear"):
			clears++
		case strings.HasPrefix(c, http.MethodPut):
			updates++
		case strings.HasSuffix(c, ":batchUpdate"):
			batches++
		}
	}
	assert.Equal(t, 3, clears)
	assert.Equal(t, 3, updates)
	// Two tabs are created, and every tab gets its header formatted.
	assert.Equal(t, 5, batches)
}
