package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/csvparse"
	"journeygrid/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader reads journey tables from local Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	maxBytes int64
	logger   *internal.Logger
}

// NewDataReader creates a reader for filePath. The file type follows the extension;
// anything that is not .xlsx/.xlsm is read as CSV.
func NewDataReader(filePath, sheet string, maxBytes int64, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: sheet, maxBytes: maxBytes, logger: logger.With("DataReader")}
}

// FileType reports "csv" or "xlsx"
func (r *DataReader) FileType() string {
	return r.fileType
}

// Read implements ports.SourcePort
func (r *DataReader) Read(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}
	return r.ReadTable()
}

// ReadTable reads the file into a tokenized table
func (r *DataReader) ReadTable() (domain.RawTable, error) {
	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	info, err := os.Stat(r.filePath)
	if os.IsNotExist(err) {
		return domain.RawTable{}, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}
	if err != nil {
		return domain.RawTable{}, errors.Wrapf(err, "stat %s", r.filePath)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return domain.RawTable{}, errors.SourceTooLarge(r.maxBytes)
	}

	switch r.fileType {
	case "xlsx":
		return r.readExcelTable()
	default:
		return r.readCSVTable()
	}
}

// readExcelTable reads the configured worksheet; cells come back as displayed text
func (r *DataReader) readExcelTable() (domain.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return domain.RawTable{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to open Excel file"))
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return domain.RawTable{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read sheet %q", r.sheet))
	}
	r.logger.Info("%s read in %.2fms (%d rows)", r.sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return domain.RawTable{Rows: rows, Origin: r.filePath, Preview: previewRows(rows)}, nil
}

// readCSVTable reads CSV text through the journey tokenizer
func (r *DataReader) readCSVTable() (domain.RawTable, error) {
	startTime := time.Now()
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return domain.RawTable{}, errors.Wrap(err, "failed to open CSV file")
	}
	text := string(data)
	rows := csvparse.Tokenize(text)
	r.logger.Info("CSV file read in %.2fms (%d rows)", float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return domain.RawTable{Rows: rows, Origin: r.filePath, Preview: csvparse.Preview(text)}, nil
}

// previewRows renders the first two rows the way they would appear in CSV text
func previewRows(rows [][]string) string {
	if len(rows) > 2 {
		rows = rows[:2]
	}
	return strings.TrimSuffix(csvparse.Join(rows), "\n")
}
