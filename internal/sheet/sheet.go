package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/redpenlabs/redpen/internal/proof"
)

// Column headers recognized in the worksheet. Matching is exact.
const (
	ColContent            = "content"
	ColContentMarkdown    = "content_markdown"
	ColTranslated         = "content_translated"
	ColTranslatedMarkdown = "content_markdown_translated"
	ColStatus             = "STATUS"
	ColScore              = "SCORE"
	ColContentReport      = "CONTENT_TYPO_REPORT"
	ColTranslatedReport   = "TRANSLATED_TYPO_REPORT"
	ColMarkdownReport     = "MARKDOWN_REPORT"
)

// Row is one batch queue entry read from the worksheet.
type Row struct {
	Index                     int // 1-based sheet row number
	Content                   string
	ContentMarkdown           string
	ContentTranslated         string
	ContentMarkdownTranslated string
	Status                    string
}

// RowResult is what gets written back for one processed row.
type RowResult struct {
	Index            int
	Score            int
	SourceReport     string
	TranslatedReport string
	MarkdownReport   string
	Status           string
	Partial          bool
}

// Client reads and writes the spreadsheet batch queue.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	headers       map[string]int // header name -> zero-based column
}

// New opens a Sheets client for one worksheet. credentialsFile may be
// empty, in which case application default credentials are used.
func New(ctx context.Context, spreadsheetID, worksheet, credentialsFile string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if worksheet == "" {
		return nil, fmt.Errorf("worksheet name is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// FetchRows reads the whole worksheet and maps rows by header. The
// first sheet row is the header row; data rows start at sheet row 2.
func (c *Client) FetchRows(ctx context.Context) ([]Row, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.worksheet).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", c.worksheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", c.worksheet)
	}

	headers, err := headerIndex(resp.Values[0])
	if err != nil {
		return nil, err
	}
	c.headers = headers

	var rows []Row
	for i, raw := range resp.Values[1:] {
		rows = append(rows, Row{
			Index:                     i + 2,
			Content:                   cell(raw, headers, ColContent),
			ContentMarkdown:           cell(raw, headers, ColContentMarkdown),
			ContentTranslated:         cell(raw, headers, ColTranslated),
			ContentMarkdownTranslated: cell(raw, headers, ColTranslatedMarkdown),
			Status:                    cell(raw, headers, ColStatus),
		})
	}
	return rows, nil
}

func headerIndex(headerRow []interface{}) (map[string]int, error) {
	headers := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		name := strings.TrimSpace(fmt.Sprintf("%v", h))
		if name != "" {
			headers[name] = i
		}
	}
	for _, required := range []string{ColContent, ColStatus, ColScore} {
		if _, ok := headers[required]; !ok {
			return nil, fmt.Errorf("worksheet missing required column %q", required)
		}
	}
	return headers, nil
}

func cell(raw []interface{}, headers map[string]int, col string) string {
	idx, ok := headers[col]
	if !ok || idx >= len(raw) {
		return ""
	}
	return fmt.Sprintf("%v", raw[idx])
}

// Requested filters to rows whose status matches the requested marker.
func Requested(rows []Row, status string) []Row {
	var out []Row
	for _, r := range rows {
		if strings.TrimSpace(r.Status) == status {
			out = append(out, r)
		}
	}
	return out
}

// WriteResults writes score, reports, and the completed status back to
// each processed row in a single batch update.
func (c *Client) WriteResults(ctx context.Context, results []RowResult) error {
	if len(results) == 0 {
		return nil
	}
	if c.headers == nil {
		return fmt.Errorf("no header map: call FetchRows first")
	}

	var data []*sheets.ValueRange
	for _, res := range results {
		cells := []struct {
			col   string
			value interface{}
		}{
			{ColScore, res.Score},
			{ColContentReport, res.SourceReport},
			{ColTranslatedReport, res.TranslatedReport},
			{ColMarkdownReport, res.MarkdownReport},
			{ColStatus, res.Status},
		}
		for _, cl := range cells {
			idx, ok := c.headers[cl.col]
			if !ok {
				continue
			}
			data = append(data, &sheets.ValueRange{
				Range:  fmt.Sprintf("%s!%s%d", c.worksheet, columnLetter(idx), res.Index),
				Values: [][]interface{}{{cl.value}},
			})
		}
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// columnLetter converts a zero-based column index to A1 notation
// (0 -> A, 25 -> Z, 26 -> AA).
func columnLetter(idx int) string {
	var b []byte
	for idx >= 0 {
		b = append([]byte{byte('A' + idx%26)}, b...)
		idx = idx/26 - 1
	}
	return string(b)
}

// BuildResult maps one row's pipeline results to the cells written
// back. source covers the original-language pair, translated the
// translated pair; translated may be nil when the row has no
// translation. The plain-text records fill the typo report columns and
// the formatted records from both documents fill the markdown report.
func BuildResult(row Row, source, translated *proof.Result, completedStatus string) RowResult {
	res := RowResult{
		Index:  row.Index,
		Status: completedStatus,
	}

	res.Score = source.Summary.Score
	res.SourceReport = reportText(source.Plain)
	markdown := []string{reportText(source.Formatted)}

	res.Partial = source.Partial
	if translated != nil {
		if translated.Summary.Score > res.Score {
			res.Score = translated.Summary.Score
		}
		res.TranslatedReport = reportText(translated.Plain)
		markdown = append(markdown, reportText(translated.Formatted))
		res.Partial = res.Partial || translated.Partial
	}

	var parts []string
	for _, m := range markdown {
		if m != "" {
			parts = append(parts, m)
		}
	}
	res.MarkdownReport = strings.Join(parts, "\n")
	return res
}

// reportText renders a variant report for a sheet cell: the confirmed
// records as bullets, then any chunk failures as explicit markers so a
// partial result is never mistaken for a clean one.
func reportText(r proof.Report) string {
	var parts []string
	if body := proof.RenderBullets(r.Records); body != "" {
		parts = append(parts, body)
	}
	for _, f := range r.Failures {
		parts = append(parts, fmt.Sprintf("[검수 실패: chunk %d, %s pass: %s]", f.ChunkIndex, f.Pass, f.Message))
	}
	return strings.Join(parts, "\n")
}
