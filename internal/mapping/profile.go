package mapping

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Profile is the declarative description of how one bank's export of one
// mapping type becomes canonical records.
type Profile struct {
	CSVSeparator        string   `yaml:"csv_separator"`
	Encoding            string   `yaml:"encoding"`
	ThousandsSeparator  string   `yaml:"thousands_separator"`
	OriginalFields      Pairs    `yaml:"original_fields"`
	DesiredFields       []string `yaml:"desired_fields"`
	SurrogateKeyColumns []string `yaml:"surrogate_key_columns"`
	DateFormat          string   `yaml:"date_format"`
	Accounts            Pairs    `yaml:"accounts"`
	DebitMultiplier     Pairs    `yaml:"debit_multiplier"`

	separator   rune
	accounts    map[string]string
	multipliers map[string]decimal.Decimal
}

// prepare validates the profile and builds its lookup tables.
func (p *Profile) prepare() error {
	if utf8.RuneCountInString(p.CSVSeparator) != 1 {
		return fmt.Errorf("csv_separator must be a single character, got: '%s'", p.CSVSeparator)
	}
	if len(p.OriginalFields) == 0 {
		return fmt.Errorf("original_fields is empty")
	}
	if len(p.DesiredFields) == 0 {
		return fmt.Errorf("desired_fields is empty")
	}
	if len(p.SurrogateKeyColumns) == 0 {
		return fmt.Errorf("surrogate_key_columns is empty")
	}
	for _, pair := range p.DebitMultiplier {
		if _, err := decimal.NewFromString(pair.Value); err != nil {
			return fmt.Errorf("debit_multiplier '%s' is not a number: %s", pair.Key, pair.Value)
		}
	}

	p.buildLookups()
	return nil
}

func (p *Profile) buildLookups() {
	p.separator, _ = utf8.DecodeRuneInString(p.CSVSeparator)
	p.accounts = p.Accounts.Map()
	p.multipliers = make(map[string]decimal.Decimal, len(p.DebitMultiplier))
	for _, pair := range p.DebitMultiplier {
		if factor, err := decimal.NewFromString(pair.Value); err == nil {
			p.multipliers[pair.Key] = factor
		}
	}
}

// Separator returns the field separator as a rune.
func (p *Profile) Separator() rune {
	if p.multipliers == nil {
		p.buildLookups()
	}
	return p.separator
}

// AccountName looks up the display name of an account number.
func (p *Profile) AccountName(number string) (string, bool) {
	if p.multipliers == nil {
		p.buildLookups()
	}
	name, ok := p.accounts[number]
	return name, ok
}

// Multiplier returns the sign factor for a debit/credit flag.
func (p *Profile) Multiplier(flag string) (decimal.Decimal, bool) {
	if p.multipliers == nil {
		p.buildLookups()
	}
	factor, ok := p.multipliers[flag]
	return factor, ok
}
