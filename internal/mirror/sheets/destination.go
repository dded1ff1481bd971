// Package sheets mirrors tables into tabs of a Google spreadsheet. Each tab
// is named after a table and its first row holds the column names.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"budgetbook/internal/mirror"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesAPI is the part of the Sheets API the destination calls.
type valuesAPI interface {
	SheetTitles(ctx context.Context) ([]string, error)
	Get(ctx context.Context, rng string) ([][]any, error)
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, values [][]any) error
}

// Destination writes to one spreadsheet.
type Destination struct {
	api valuesAPI
}

// Credentials selects the service account; JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// Connect builds a Sheets service using service account credentials.
func Connect(ctx context.Context, spreadsheetID string, creds Credentials) (*Destination, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		raw, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets destination ready", "spreadsheet_id", spreadsheetID)
	return &Destination{api: &serviceAPI{svc: svc, spreadsheetID: spreadsheetID}}, nil
}

// Opener adapts Connect to mirror.Opener.
func Opener(spreadsheetID string, creds Credentials) mirror.Opener {
	return func(ctx context.Context) (mirror.Destination, error) {
		return Connect(ctx, spreadsheetID, creds)
	}
}

// Describe reads the header row. Sheets carry no declared types, so columns
// named date or ending in _date or _at are declared DATE and everything else
// TEXT.
func (d *Destination) Describe(ctx context.Context, table string) (mirror.TableSchema, bool, error) {
	tab, ok, err := d.findTab(ctx, table)
	if err != nil || !ok {
		return mirror.TableSchema{Name: table}, false, err
	}
	header, err := d.api.Get(ctx, quoteTab(tab)+"!1:1")
	if err != nil {
		return mirror.TableSchema{}, false, fmt.Errorf("read header of %s: %w", tab, err)
	}
	schema := mirror.TableSchema{Name: tab}
	if len(header) == 0 {
		return schema, true, nil
	}
	for _, cell := range header[0] {
		name := strings.TrimSpace(fmt.Sprint(cell))
		if name == "" {
			continue
		}
		schema.Columns = append(schema.Columns, mirror.Column{Name: name, Type: declaredType(name)})
	}
	return schema, true, nil
}

func (d *Destination) Begin(ctx context.Context, table string) (mirror.TableWriter, error) {
	schema, ok, err := d.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tab %q not found", table)
	}
	index := make(map[string]int, len(schema.Columns))
	for i, c := range schema.Columns {
		index[strings.ToLower(c.Name)] = i
	}
	return &tabWriter{api: d.api, tab: schema.Name, index: index, width: len(schema.Columns)}, nil
}

func (d *Destination) Close(context.Context) error { return nil }

func (d *Destination) findTab(ctx context.Context, table string) (string, bool, error) {
	titles, err := d.api.SheetTitles(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list tabs: %w", err)
	}
	for _, t := range titles {
		if strings.EqualFold(t, table) {
			return t, true, nil
		}
	}
	return "", false, nil
}

// tabWriter buffers rows and writes them on Commit; a spreadsheet has no
// transactions, so nothing is touched until then.
type tabWriter struct {
	api   valuesAPI
	tab   string
	index map[string]int
	width int
	clear bool
	rows  [][]any
}

func (w *tabWriter) DeleteAll(context.Context) error {
	w.clear = true
	w.rows = nil
	return nil
}

func (w *tabWriter) Insert(_ context.Context, columns []string, values []any) error {
	if len(columns) != len(values) {
		return fmt.Errorf("got %d values for %d columns", len(values), len(columns))
	}
	row := make([]any, w.width)
	for i := range row {
		row[i] = ""
	}
	for i, c := range columns {
		pos, ok := w.index[strings.ToLower(c)]
		if !ok {
			return fmt.Errorf("column %q not in tab %s", c, w.tab)
		}
		cell, err := cellValue(values[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", c, err)
		}
		row[pos] = cell
	}
	w.rows = append(w.rows, row)
	return nil
}

func (w *tabWriter) Commit(ctx context.Context) error {
	if w.clear {
		if err := w.api.Clear(ctx, quoteTab(w.tab)+"!A2:ZZZ"); err != nil {
			return fmt.Errorf("clear %s: %w", w.tab, err)
		}
	}
	if len(w.rows) == 0 {
		return nil
	}
	if err := w.api.Update(ctx, quoteTab(w.tab)+"!A2", w.rows); err != nil {
		return fmt.Errorf("write %s: %w", w.tab, err)
	}
	return nil
}

func (w *tabWriter) Rollback(context.Context) error {
	w.rows = nil
	w.clear = false
	return nil
}

func declaredType(column string) string {
	c := strings.ToLower(column)
	if c == "date" || strings.HasSuffix(c, "_date") || strings.HasSuffix(c, "_at") {
		return "DATE"
	}
	return "TEXT"
}

// cellValue renders a value in a form USER_ENTERED input parses back.
func cellValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return x.Format("2006-01-02 15:04:05"), nil
	case []byte:
		return string(x), nil
	case string, bool, int, int32, int64, float32, float64:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

type serviceAPI struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceAPI) SheetTitles(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (s *serviceAPI) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceAPI) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s *serviceAPI) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
