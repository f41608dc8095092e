package aggregate

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"carbon-track/models"
)

// CSVFileName est le nom du fichier proposé au téléchargement.
const CSVFileName = "emission_history.csv"

// CSVHeader est l'en-tête de l'export, dans l'ordre des colonnes.
var CSVHeader = []string{"ID", "Date", "Category", "Description", "Usage", "Emissions"}

// WriteCSV écrit l'en-tête puis une ligne par enregistrement, dans l'ordre donné.
// La description est toujours entre guillemets ; les nombres ne sont pas formatés.
func WriteCSV(w io.Writer, recs []models.EmissionRecord) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := bw.WriteString(CSVLine(r) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CSVLine projette un enregistrement sur une ligne CSV (sans fin de ligne).
func CSVLine(r models.EmissionRecord) string {
	fields := []string{
		quoteIfNeeded(r.ID),
		quoteIfNeeded(r.Date),
		quoteIfNeeded(string(r.Category)),
		quote(r.Description),
		formatNumber(r.Usage),
		formatNumber(r.Emissions),
	}
	return strings.Join(fields, ",")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// ErrEmptyCSV est retourné quand le fichier ne contient aucune ligne de données.
var ErrEmptyCSV = errors.New("aggregate: empty csv")

// ImportResult résume la lecture d'un fichier CSV exporté.
type ImportResult struct {
	Records []models.NewRecord
	Skipped int
}

// ReadCSV relit un fichier au format de WriteCSV. L'en-tête est ignoré, les
// lignes invalides sont comptées dans Skipped. Les émissions sont reprises telles quelles.
func ReadCSV(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return ImportResult{}, fmt.Errorf("aggregate: read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "id") {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return ImportResult{}, ErrEmptyCSV
	}

	var res ImportResult
	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func parseRow(row []string) (models.NewRecord, bool) {
	if len(row) < len(CSVHeader) {
		return models.NewRecord{}, false
	}
	date := strings.TrimSpace(row[1])
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.NewRecord{}, false
	}
	category, err := models.ParseCategory(strings.TrimSpace(row[2]))
	if err != nil {
		return models.NewRecord{}, false
	}
	description := strings.TrimSpace(row[3])
	if description == "" {
		return models.NewRecord{}, false
	}
	usage, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil || !(usage >= 0) {
		return models.NewRecord{}, false
	}
	emissions, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil || !(emissions >= 0) {
		return models.NewRecord{}, false
	}
	return models.NewRecord{
		Date:        date,
		Category:    category,
		Description: description,
		Usage:       usage,
		Emissions:   emissions,
	}, true
}
