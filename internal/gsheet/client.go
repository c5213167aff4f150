package gsheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// New worksheets start with this grid.
	defaultGridRows = 100
	defaultGridCols = 100

	// The grid is grown once the next free row reaches this threshold.
	resizeThreshold = 1000
)

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrWorksheetNotFound   = errors.New("worksheet not found")
)

// Client talks to the Sheets and Drive APIs for a single configured
// spreadsheet/worksheet pair. The connection is established lazily on
// first use: the spreadsheet is located by title (created and shared
// with the writer emails when absent) and the worksheet is located
// within it (created when absent).
//
// Client is not safe for concurrent use; the bot serializes access
// through an AppendQueue.
type Client struct {
	cfg  Config
	log  *logrus.Entry
	opts []option.ClientOption

	sheets *sheets.Service
	drive  *drive.Service

	spreadsheetID string
	sheetID       int64
	hasSheet      bool
}

// NewClient builds an unconnected client. opts override the
// service-account credentials, which tests use to point the client at
// a fake API endpoint.
func NewClient(cfg Config, log *logrus.Logger, opts ...option.ClientOption) *Client {
	return &Client{
		cfg:  cfg,
		log:  log.WithField("component", "gsheet"),
		opts: opts,
	}
}

// Connect eagerly establishes the connection and resolves the
// spreadsheet and worksheet. The bot calls it at startup so that
// credential and sharing problems surface before polling begins.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	if c.sheets == nil || c.drive == nil {
		opts := c.opts
		if len(opts) == 0 {
			var err error
			opts, err = c.cfg.clientOptions(ctx)
			if err != nil {
				return err
			}
		}

		sheetsSvc, err := sheets.NewService(ctx, opts...)
		if err != nil {
			return fmt.Errorf("create sheets service: %w", err)
		}
		driveSvc, err := drive.NewService(ctx, opts...)
		if err != nil {
			return fmt.Errorf("create drive service: %w", err)
		}
		c.sheets = sheetsSvc
		c.drive = driveSvc
	}

	if c.spreadsheetID == "" {
		id, err := c.findSpreadsheet(ctx)
		if errors.Is(err, ErrSpreadsheetNotFound) {
			id, err = c.createSpreadsheet(ctx)
		}
		if err != nil {
			return err
		}
		c.spreadsheetID = id
	}

	if !c.hasSheet {
		props, err := c.findWorksheet(ctx)
		if errors.Is(err, ErrWorksheetNotFound) {
			props, err = c.createWorksheet(ctx)
		}
		if err != nil {
			return err
		}
		c.sheetID = props.SheetId
		c.hasSheet = true
	}

	return nil
}

func (c *Client) findSpreadsheet(ctx context.Context) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeQueryTerm(c.cfg.SpreadsheetTitle), spreadsheetMimeType)

	list, err := c.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(2).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", c.cfg.SpreadsheetTitle, err)
	}

	for _, f := range list.Files {
		if f.Name == c.cfg.SpreadsheetTitle {
			return f.Id, nil
		}
	}
	return "", ErrSpreadsheetNotFound
}

func (c *Client) createSpreadsheet(ctx context.Context) (string, error) {
	c.log.WithField("spreadsheet", c.cfg.SpreadsheetTitle).Info("Spreadsheet not found, creating")

	created, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: c.cfg.SpreadsheetTitle},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", c.cfg.SpreadsheetTitle, err)
	}

	if err := c.share(ctx, created.SpreadsheetId, c.cfg.WriterEmails); err != nil {
		return "", err
	}
	return created.SpreadsheetId, nil
}

func (c *Client) findWorksheet(ctx context.Context) (*sheets.SheetProperties, error) {
	meta, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.cfg.WorksheetTitle {
			return s.Properties, nil
		}
	}
	return nil, ErrWorksheetNotFound
}

func (c *Client) createWorksheet(ctx context.Context) (*sheets.SheetProperties, error) {
	c.log.WithField("worksheet", c.cfg.WorksheetTitle).Info("Worksheet not found, creating")

	resp, err := c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: c.cfg.WorksheetTitle,
					GridProperties: &sheets.GridProperties{
						RowCount:    defaultGridRows,
						ColumnCount: defaultGridCols,
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("add worksheet %q: %w", c.cfg.WorksheetTitle, err)
	}

	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			return r.AddSheet.Properties, nil
		}
	}
	return nil, fmt.Errorf("add worksheet %q: empty batch reply", c.cfg.WorksheetTitle)
}

// AppendRow appends one row of cells to the worksheet with
// USER_ENTERED input semantics. The grid is grown when the next free
// row (count of non-empty column A cells + 1) reaches the threshold.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	next, err := c.nextAvailableRow(ctx)
	if err != nil {
		return err
	}
	if next >= resizeThreshold {
		if err := c.resize(ctx, next+1); err != nil {
			return err
		}
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	_, err = c.sheets.Spreadsheets.Values.Append(c.spreadsheetID, a1SheetRange(c.cfg.WorksheetTitle), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"worksheet": c.cfg.WorksheetTitle,
		"row":       next,
	}).Debug("Row appended")
	return nil
}

func (c *Client) nextAvailableRow(ctx context.Context) (int64, error) {
	vals, err := c.sheets.Spreadsheets.Values.Get(c.spreadsheetID, a1ColumnRange(c.cfg.WorksheetTitle, "A")).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read column A: %w", err)
	}

	var used int64
	for _, r := range vals.Values {
		if len(r) == 0 {
			continue
		}
		if s, ok := r[0].(string); ok && s == "" {
			continue
		}
		used++
	}
	return used + 1, nil
}

func (c *Client) resize(ctx context.Context, rows int64) error {
	c.log.WithFields(logrus.Fields{
		"worksheet": c.cfg.WorksheetTitle,
		"rows":      rows,
	}).Info("Growing worksheet grid")

	_, err := c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        c.sheetID,
					GridProperties: &sheets.GridProperties{RowCount: rows},
				},
				Fields: "gridProperties.rowCount",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("resize worksheet to %d rows: %w", rows, err)
	}
	return nil
}

// Share grants writer permission to each email.
func (c *Client) Share(ctx context.Context, emails []string) error {
	if err := c.connect(ctx); err != nil {
		return err
	}
	return c.share(ctx, c.spreadsheetID, emails)
}

func (c *Client) share(ctx context.Context, fileID string, emails []string) error {
	for _, email := range emails {
		_, err := c.drive.Permissions.Create(fileID, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: email,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("share with %s: %w", email, err)
		}
		c.log.WithField("email", email).Info("Writer access granted")
	}
	return nil
}

// Worksheets lists the worksheet titles of the spreadsheet.
func (c *Client) Worksheets(ctx context.Context) ([]string, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	meta, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// DeleteWorksheets deletes the named worksheets. Titles that do not
// exist are skipped.
func (c *Client) DeleteWorksheets(ctx context.Context, titles []string) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	meta, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	available := make(map[string]int64, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			available[s.Properties.Title] = s.Properties.SheetId
		}
	}

	var requests []*sheets.Request
	for _, title := range titles {
		id, ok := available[title]
		if !ok {
			c.log.WithField("worksheet", title).Warn("Worksheet not found, skipping delete")
			continue
		}
		requests = append(requests, &sheets.Request{
			DeleteSheet: &sheets.DeleteSheetRequest{SheetId: id},
		})
		if title == c.cfg.WorksheetTitle {
			c.hasSheet = false
		}
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete worksheets: %w", err)
	}
	return nil
}

// a1SheetRange quotes a worksheet title for use as an A1 range.
func a1SheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func a1ColumnRange(title, col string) string {
	return fmt.Sprintf("%s!%s:%s", a1SheetRange(title), col, col)
}

// escapeQueryTerm escapes single quotes for Drive search queries.
func escapeQueryTerm(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
