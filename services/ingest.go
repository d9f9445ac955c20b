package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/d3ming/ycx25-voter/models"
	"github.com/d3ming/ycx25-voter/sources"
)

// Spaltennamen des Batch-Exports.
const (
	colCompanyName        = "Company Name"
	colCompanyURL         = "Company URL"
	colCompanyDescription = "Company Description"
	colCompanyWebsite     = "Company Website"
	colFounderName        = "Founder Name"
	colFounderTitle       = "Founder Title"
	colFounderLinkedIn    = "Founder LinkedIn"
)

var requiredColumns = []string{
	colCompanyName, colCompanyURL, colCompanyDescription, colCompanyWebsite,
	colFounderName, colFounderTitle, colFounderLinkedIn,
}

const companyProfileMarker = "linkedin.com/company"

var (
	foundedRe  = regexp.MustCompile(`Founded in (\d{4})`)
	locationRe = regexp.MustCompile(`based in ([^,.]+(?:, [^,.]+)*)`)
)

// Row ist eine Zeile des Exports: Firmendaten plus ein Gründer-Kandidat.
type Row struct {
	CompanyName        string
	CompanyURL         string
	CompanyDescription string
	CompanyWebsite     string
	FounderName        string
	FounderTitle       string
	FounderLinkedIn    string
}

// ReadRows liest den CSV-Export. Die Spaltenreihenfolge ist beliebig.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv export is empty")
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("csv export is missing column %q", col)
		}
	}

	// Zellen werden NFC-normalisiert, damit zusammengesetzte und vorkomponierte Namen gleich gruppieren.
	cell := func(record []string, col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		return norm.NFC.String(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record: %w", err)
		}
		row := Row{
			CompanyName:        strings.TrimSpace(cell(record, colCompanyName)),
			CompanyURL:         strings.TrimSpace(cell(record, colCompanyURL)),
			CompanyDescription: cell(record, colCompanyDescription),
			CompanyWebsite:     strings.TrimSpace(cell(record, colCompanyWebsite)),
			FounderName:        strings.TrimSpace(cell(record, colFounderName)),
			FounderTitle:       strings.TrimSpace(cell(record, colFounderTitle)),
			FounderLinkedIn:    strings.TrimSpace(cell(record, colFounderLinkedIn)),
		}
		if row.CompanyName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NormalizeResult enthält die Firmen in Reihenfolge des ersten Auftretens.
type NormalizeResult struct {
	Companies []models.Company
	// Ambiguous sammelt Zeilen mit Gründer-Titel, deren Name verworfen wurde.
	Ambiguous []Row
}

// Normalize faltet die Zeilen zu einem Datensatz pro Firma zusammen.
func Normalize(rows []Row) NormalizeResult {
	var res NormalizeResult
	byName := map[string]int{}
	founders := [][]models.Founder{}

	for _, row := range rows {
		i, ok := byName[row.CompanyName]
		if !ok {
			i = len(res.Companies)
			byName[row.CompanyName] = i
			res.Companies = append(res.Companies, models.Company{
				Name:        row.CompanyName,
				URL:         row.CompanyURL,
				Description: row.CompanyDescription,
				Website:     row.CompanyWebsite,
				Tier:        models.DefaultTier,
			})
			founders = append(founders, []models.Founder{})
		}
		company := &res.Companies[i]

		switch ClassifyFounder(row.FounderTitle, row.FounderName, company.Name) {
		case Founder:
			if !hasFounder(founders[i], row.FounderName) {
				founders[i] = append(founders[i], models.Founder{Name: row.FounderName, LinkedIn: row.FounderLinkedIn})
			}
		case Ambiguous:
			res.Ambiguous = append(res.Ambiguous, row)
		}

		if row.FounderName == company.Name && strings.Contains(row.FounderLinkedIn, companyProfileMarker) {
			link := row.FounderLinkedIn
			company.CompanyLinkedIn = &link
		}
	}

	for i := range res.Companies {
		c := &res.Companies[i]
		c.SetFounders(founders[i])
		c.SetTags(nil)
		c.FoundedYear = FoundedYear(c.Description)
		c.Location = Location(c.Description)
		c.ShortDescription = ShortDescription(c.Description)
	}
	return res
}

func hasFounder(founders []models.Founder, name string) bool {
	for _, f := range founders {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FoundedYear extrahiert "Founded in YYYY" aus der Beschreibung.
func FoundedYear(description string) string {
	if m := foundedRe.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return models.Unknown
}

// Location extrahiert den Standort aus "based in <Ort>, <Ort>".
func Location(description string) string {
	if m := locationRe.FindStringSubmatch(description); m != nil {
		if loc := strings.TrimSpace(m[1]); loc != "" {
			return loc
		}
	}
	return models.Unknown
}

// ShortDescription liefert den Text bis einschließlich zum ersten Punkt.
func ShortDescription(description string) string {
	if i := strings.Index(description, "."); i >= 0 {
		return description[:i+1]
	}
	return description + "."
}

// Ingestor importiert den Export einmalig in die Datenbank.
type Ingestor struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	Overrides []Override
}

// NewIngestor erstellt eine neue Instanz des Ingestor.
func NewIngestor(db *gorm.DB, logger *zap.Logger, overrides []Override) *Ingestor {
	return &Ingestor{DB: db, Logger: logger, Overrides: overrides}
}

// Seed importiert die Quelle, sofern die Tabelle noch leer ist, und liefert die Anzahl neuer Firmen.
func (in *Ingestor) Seed(ctx context.Context, src sources.Source) (int, error) {
	log := in.Logger.With(zap.String("source", src.Name()))

	var count int64
	if err := in.DB.WithContext(ctx).Model(&models.Company{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting companies: %w", err)
	}
	if count > 0 {
		log.Info("Companies already imported, skipping ingestion.", zap.Int64("existing", count))
		return 0, nil
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("opening source %s: %w", src.Name(), err)
	}
	defer rc.Close()

	rows, err := ReadRows(rc)
	if err != nil {
		return 0, err
	}
	res := Normalize(rows)
	for _, row := range res.Ambiguous {
		log.Debug("Founder row rejected by name filter",
			zap.String("company", row.CompanyName),
			zap.String("name", row.FounderName),
			zap.String("title", row.FounderTitle))
	}

	for _, name := range ApplyOverrides(res.Companies, in.Overrides) {
		log.Warn("Override references unknown company", zap.String("company", name))
	}

	if len(res.Companies) == 0 {
		log.Warn("Source contained no companies.")
		return 0, nil
	}

	err = in.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&res.Companies, 100).Error
	})
	if err != nil {
		return 0, fmt.Errorf("persisting companies: %w", err)
	}

	companiesIngestedCounter.Add(float64(len(res.Companies)))
	log.Info("Companies imported",
		zap.Int("rows", len(rows)),
		zap.Int("companies", len(res.Companies)),
		zap.Int("ambiguous_rows", len(res.Ambiguous)))
	return len(res.Companies), nil
}
