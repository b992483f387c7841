// Package tradefile reads transactions from markdown trade notes. Each note
// starts with a YAML frontmatter block describing one buy or sell:
//
//	---
//	ticker: VAS
//	date: 2024-03-01
//	action: buy
//	quantity: 100
//	price: 95.20
//	fee: 9.50
//	reference: CN-12345
//	---
//	Free-form notes...
//
// Notes are found at <base>/<year>/*.md, where <year> is any all-digit
// directory name.
package tradefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
	ptf "github.com/tsiemens/cgt/portfolio"
)

const TradeFileExt = ".md"

// Format of dates in frontmatter.
var DateFormat string = date.DefaultFormat

// ErrNoFrontMatter is returned for markdown files that do not start with a
// frontmatter block. These are ordinary notes, not trades.
var ErrNoFrontMatter = errors.New("no frontmatter")

var frontMatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---`)

// scalar accepts any YAML scalar as its literal text, so that unquoted dates
// and numbers are read exactly as written.
type scalar string

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a single value", value.Line)
	}
	*s = scalar(strings.TrimSpace(value.Value))
	return nil
}

type frontMatter struct {
	Ticker    scalar `yaml:"ticker"`
	Security  scalar `yaml:"security"`
	Date      scalar `yaml:"date"`
	Action    scalar `yaml:"action"`
	Quantity  scalar `yaml:"quantity"`
	Price     scalar `yaml:"price"`
	Fee       scalar `yaml:"fee"`
	Reference scalar `yaml:"reference"`
	Memo      scalar `yaml:"memo"`
}

func parseAmount(s scalar, what string) (decimal.Decimal, error) {
	str := strings.ReplaceAll(strings.TrimPrefix(string(s), "$"), ",", "")
	if str == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Invalid %s %q", what, string(s))
	}
	return d, nil
}

// ParseTrade reads a Tx from the frontmatter of content. source identifies
// the file in warnings, and is used to derive a stable reference when the
// frontmatter has none.
//
// Unrecognized actions and missing tickers are not errors here. They produce
// a Tx which the matching engine skips with a diagnostic.
func ParseTrade(content []byte, source string) (*ptf.Tx, error) {
	m := frontMatterRe.FindSubmatch(content)
	if m == nil {
		return nil, ErrNoFrontMatter
	}

	var fm frontMatter
	if err := yaml.Unmarshal(m[1], &fm); err != nil {
		return nil, fmt.Errorf("Parsing frontmatter of %s: %w", source, err)
	}

	tx := ptf.DefaultTx()
	tx.Source = source
	tx.Security = strings.ToUpper(string(fm.Ticker))
	if tx.Security == "" {
		tx.Security = strings.ToUpper(string(fm.Security))
	}
	tx.Action, _ = ptf.ParseTxAction(string(fm.Action))
	tx.Memo = string(fm.Memo)

	if fm.Date == "" {
		return nil, fmt.Errorf("%s has no date", source)
	}
	d, err := date.Parse(DateFormat, string(fm.Date))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	tx.Date = d

	if tx.Quantity, err = parseAmount(fm.Quantity, "quantity"); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if tx.Price, err = parseAmount(fm.Price, "price"); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if tx.Fee, err = parseAmount(fm.Fee, "fee"); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	tx.Reference = string(fm.Reference)
	if tx.Reference == "" {
		tx.Reference = DefaultReference(source)
	}
	return tx, nil
}

// DefaultReference is a name-based (v5) UUID of the trade file's path, so it
// is the same on every run.
func DefaultReference(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.ToSlash(source))).String()
}

func isYearDir(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FindTradeFiles lists the trade files under basePath, ordered by year
// directory and then file name.
func FindTradeFiles(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("Reading trades directory: %w", err)
	}

	var yearDirs []string
	for _, e := range entries {
		if e.IsDir() && isYearDir(e.Name()) {
			yearDirs = append(yearDirs, e.Name())
		}
	}
	sort.Strings(yearDirs)

	var files []string
	for _, yd := range yearDirs {
		yearPath := filepath.Join(basePath, yd)
		yearEntries, err := os.ReadDir(yearPath)
		if err != nil {
			return nil, fmt.Errorf("Reading %s: %w", yearPath, err)
		}
		// ReadDir already sorts by file name
		for _, e := range yearEntries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), TradeFileExt) {
				files = append(files, filepath.Join(yearPath, e.Name()))
			}
		}
	}
	return files, nil
}

// LoadTrades reads every trade file under basePath. Files which cannot be
// parsed are skipped with a warning. Txs are numbered from initialReadIndex
// in file order.
//
// Return: txs, user warnings, error
func LoadTrades(basePath string, initialReadIndex uint32) ([]*ptf.Tx, []string, error) {
	files, err := FindTradeFiles(basePath)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	txs := make([]*ptf.Tx, 0, len(files))
	readIndex := initialReadIndex
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Skipping %s: %v", path, err))
			continue
		}
		source := path
		if rel, err := filepath.Rel(basePath, path); err == nil {
			source = rel
		}
		tx, err := ParseTrade(content, source)
		if errors.Is(err, ErrNoFrontMatter) {
			log.Tracef("tradefile", "%s has no frontmatter", path)
			continue
		} else if err != nil {
			warnings = append(warnings, fmt.Sprintf("Skipping trade file: %v", err))
			continue
		}
		tx.ReadIndex = readIndex
		readIndex++
		log.Tracef("tradefile", "read %v from %s", tx, path)
		txs = append(txs, tx)
	}
	return txs, warnings, nil
}
