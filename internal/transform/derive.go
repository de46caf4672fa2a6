package transform

import (
	"errors"
	"time"

	"fjacquet/bank-ingest/internal/currencyutils"
	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/mapping"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/tabular"
)

// softFailures collects row-level coercion failures of one file.
type softFailures struct {
	mappingType string
	byColumn    map[string]int
	samples     map[string]*parsererror.ParseError
	total       int
}

func newSoftFailures(mappingType string) *softFailures {
	return &softFailures{
		mappingType: mappingType,
		byColumn:    make(map[string]int),
		samples:     make(map[string]*parsererror.ParseError),
	}
}

func (s *softFailures) add(column, value string, err error) {
	s.total++
	s.byColumn[column]++
	if _, ok := s.samples[column]; !ok {
		s.samples[column] = &parsererror.ParseError{Parser: s.mappingType, Field: column, Value: value, Err: err}
	}
}

var (
	errUnknownAccount = errors.New("account not listed in profile")
	errUnknownFlag    = errors.New("debit/credit flag not listed in profile")
)

// parseDates parses column with the profile date format. Failed cells are nil.
func parseDates(tbl *tabular.Table, column, format string, soft *softFailures) []*time.Time {
	dates := make([]*time.Time, tbl.Len())
	for i := range dates {
		raw := tbl.Text(i, column)
		d, err := dateutils.ParseStrftime(raw, format)
		if err != nil {
			soft.add(column, raw, err)
			continue
		}
		dates[i] = &d
	}
	return dates
}

// dateParts turns parsed dates into the date, year and year-month cells.
func dateParts(dates []*time.Time) (dateCells, years, yearMonths []any) {
	dateCells = make([]any, len(dates))
	years = make([]any, len(dates))
	yearMonths = make([]any, len(dates))
	for i, p := range dates {
		if p == nil {
			continue
		}
		d := *p
		dateCells[i] = d
		years[i] = d.Year()
		yearMonths[i] = dateutils.YearMonth(d)
	}
	return dateCells, years, yearMonths
}

func deriveStatement(tbl *tabular.Table, profile *mapping.Profile, soft *softFailures) error {
	n := tbl.Len()

	accNames := make([]any, n)
	for i := 0; i < n; i++ {
		number := tbl.Text(i, models.ColumnAccountNumber)
		if name, ok := profile.AccountName(number); ok {
			accNames[i] = name
		} else {
			soft.add(models.ColumnAccName, number, errUnknownAccount)
		}
	}

	dates, years, yearMonths := dateParts(parseDates(tbl, models.ColumnDate, profile.DateFormat, soft))

	sums := make([]any, n)
	for i := 0; i < n; i++ {
		raw := tbl.Text(i, models.ColumnSum)
		magnitude, err := currencyutils.ParseAmount(raw, profile.ThousandsSeparator)
		if err != nil {
			soft.add(models.ColumnSum, raw, err)
			continue
		}
		flag := tbl.Text(i, models.ColumnDebitCredit)
		factor, ok := profile.Multiplier(flag)
		if !ok {
			soft.add(models.ColumnSum, flag, errUnknownFlag)
			continue
		}
		sums[i] = currencyutils.ApplySign(magnitude, factor)
	}

	for _, col := range []struct {
		name   string
		values []any
	}{
		{models.ColumnAccName, accNames},
		{models.ColumnDate, dates},
		{models.ColumnYear, years},
		{models.ColumnYearMonth, yearMonths},
		{models.ColumnSum, sums},
	} {
		if err := tbl.SetColumn(col.name, col.values); err != nil {
			return err
		}
	}
	return nil
}

func deriveSecurity(tbl *tabular.Table, profile *mapping.Profile, soft *softFailures) error {
	sendDates, _, _ := dateParts(parseDates(tbl, models.ColumnSendDate, profile.DateFormat, soft))
	effectDates, effectYears, effectYearMonths := dateParts(parseDates(tbl, models.ColumnEffectDate, profile.DateFormat, soft))

	for _, col := range []struct {
		name   string
		values []any
	}{
		{models.ColumnSendDate, sendDates},
		{models.ColumnEffectDate, effectDates},
		{models.ColumnEffectYear, effectYears},
		{models.ColumnEffectYearMonth, effectYearMonths},
	} {
		if err := tbl.SetColumn(col.name, col.values); err != nil {
			return err
		}
	}
	return nil
}

// requiredSourceColumns lists the renamed columns a mapping type derives from.
func requiredSourceColumns(mappingType string) []string {
	switch mappingType {
	case models.MappingTypeStatement:
		return []string{models.ColumnAccountNumber, models.ColumnDate, models.ColumnSum, models.ColumnDebitCredit}
	case models.MappingTypeSecurity:
		return []string{models.ColumnSendDate, models.ColumnEffectDate}
	default:
		return nil
	}
}
