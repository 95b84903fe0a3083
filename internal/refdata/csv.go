package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/family-tree/internal/model"
)

// File names inside a reference data directory.
const (
	RatesFile           = "birth_and_marriage_rates.csv"
	FirstNamesFile      = "first_names.csv"
	LastNamesFile       = "last_names.csv"
	RankProbabilityFile = "rank_to_probability.csv"
	LifeExpectancyFile  = "life_expectancy.csv"
)

// LoadDir reads the reference CSV files from dir. The rank probability
// file is optional; without it surnames are drawn uniformly.
func LoadDir(dir string) (*Tables, error) {
	l := &loader{title: cases.Title(language.English)}
	var rows Rows
	var err error

	if rows.Rates, err = readFile(filepath.Join(dir, RatesFile), l.rates); err != nil {
		return nil, err
	}
	if rows.FirstNames, err = readFile(filepath.Join(dir, FirstNamesFile), l.firstNames); err != nil {
		return nil, err
	}
	if rows.Surnames, err = readFile(filepath.Join(dir, LastNamesFile), l.surnames); err != nil {
		return nil, err
	}
	rows.RankProbabilities, err = readFile(filepath.Join(dir, RankProbabilityFile), l.rankProbabilities)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if rows.Lifespans, err = readFile(filepath.Join(dir, LifeExpectancyFile), l.lifespans); err != nil {
		return nil, err
	}

	return New(rows)
}

type loader struct {
	title cases.Caser
}

func readFile[T any](path string, parse func(header []string, records [][]string) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	out, err := parse(header, records)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// columns maps lower-cased header names to their index.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := c[h]; !dup {
			c[h] = i
		}
	}
	return c
}

// find returns the index of the first present name.
func (c columns) find(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i, true
		}
	}
	return -1, false
}

func (c columns) require(names ...string) (int, error) {
	i, ok := c.find(names...)
	if !ok {
		return -1, fmt.Errorf("%w: missing column %q", ErrInvalidTable, names[0])
	}
	return i, nil
}

func parseFloat(line int, field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s %q: %w", line, field, s, err)
	}
	return f, nil
}

func parseInt(line int, field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("line %d: %s %q: %w", line, field, s, err)
	}
	return n, nil
}

// normalizeName title-cases names written entirely in one case, such as
// the census style "SMITH". Mixed-case names are kept as written.
func (l *loader) normalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == strings.ToUpper(s) || s == strings.ToLower(s) {
		return l.title.String(s)
	}
	return s
}

func (l *loader) rates(header []string, records [][]string) ([]RateRow, error) {
	c := newColumns(header)
	di, err := c.require("decade", "year")
	if err != nil {
		return nil, err
	}
	bi, err := c.require("birth_rate")
	if err != nil {
		return nil, err
	}
	mi, err := c.require("marriage_rate")
	if err != nil {
		return nil, err
	}

	out := make([]RateRow, 0, len(records))
	for n, rec := range records {
		line := n + 2
		decade, err := ParseDecade(rec[di])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		birth, err := parseFloat(line, "birth_rate", rec[bi])
		if err != nil {
			return nil, err
		}
		marriage, err := parseFloat(line, "marriage_rate", rec[mi])
		if err != nil {
			return nil, err
		}
		out = append(out, RateRow{Decade: decade, BirthRate: birth, MarriageRate: marriage})
	}
	return out, nil
}

func (l *loader) firstNames(header []string, records [][]string) ([]FirstNameRow, error) {
	c := newColumns(header)
	di, err := c.require("decade", "year")
	if err != nil {
		return nil, err
	}
	gi, err := c.require("gender", "sex")
	if err != nil {
		return nil, err
	}
	ni, err := c.require("name", "first_name", "firstname")
	if err != nil {
		return nil, err
	}
	fi, err := c.require("frequency", "count", "weight")
	if err != nil {
		return nil, err
	}

	out := make([]FirstNameRow, 0, len(records))
	for n, rec := range records {
		line := n + 2
		decade, err := ParseDecade(rec[di])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		gender, err := model.ParseGender(strings.TrimSpace(rec[gi]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		freq, err := parseFloat(line, "frequency", rec[fi])
		if err != nil {
			return nil, err
		}
		out = append(out, FirstNameRow{
			Decade:    decade,
			Gender:    gender,
			Name:      l.normalizeName(rec[ni]),
			Frequency: freq,
		})
	}
	return out, nil
}

func (l *loader) surnames(header []string, records [][]string) ([]SurnameRow, error) {
	c := newColumns(header)
	ni, err := c.require("lastname", "last_name", "surname", "name")
	if err != nil {
		return nil, err
	}
	di, hasDecade := c.find("decade")
	ri, hasRank := c.find("rank")

	out := make([]SurnameRow, 0, len(records))
	position := make(map[int]int)
	for n, rec := range records {
		line := n + 2
		decade := 0
		if hasDecade {
			decade, err = ParseDecade(rec[di])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		position[decade]++
		rank := position[decade]
		if hasRank {
			rank, err = parseInt(line, "rank", rec[ri])
			if err != nil {
				return nil, err
			}
		}
		out = append(out, SurnameRow{Decade: decade, Rank: rank, Name: l.normalizeName(rec[ni])})
	}
	return out, nil
}

// rankProbabilities accepts two layouts: a lone header row whose cells are
// the probabilities for ranks 1..n, or rows of [decade,]rank,probability.
func (l *loader) rankProbabilities(header []string, records [][]string) ([]RankProbabilityRow, error) {
	if probs, ok := headerProbabilities(header); ok {
		out := make([]RankProbabilityRow, len(probs))
		for i, p := range probs {
			out[i] = RankProbabilityRow{Rank: i + 1, Probability: p}
		}
		return out, nil
	}

	c := newColumns(header)
	ri, err := c.require("rank")
	if err != nil {
		return nil, err
	}
	pi, err := c.require("probability", "prob", "weight")
	if err != nil {
		return nil, err
	}
	di, hasDecade := c.find("decade")

	out := make([]RankProbabilityRow, 0, len(records))
	for n, rec := range records {
		line := n + 2
		decade := 0
		if hasDecade && strings.TrimSpace(rec[di]) != "" {
			decade, err = ParseDecade(rec[di])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		rank, err := parseInt(line, "rank", rec[ri])
		if err != nil {
			return nil, err
		}
		p, err := parseFloat(line, "probability", rec[pi])
		if err != nil {
			return nil, err
		}
		out = append(out, RankProbabilityRow{Decade: decade, Rank: rank, Probability: p})
	}
	return out, nil
}

func headerProbabilities(header []string) ([]float64, bool) {
	probs := make([]float64, 0, len(header))
	for _, h := range header {
		f, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return nil, false
		}
		probs = append(probs, f)
	}
	return probs, len(probs) > 0
}

func (l *loader) lifespans(header []string, records [][]string) ([]LifespanRow, error) {
	c := newColumns(header)
	yi, err := c.require("year")
	if err != nil {
		return nil, err
	}
	ei, err := c.require("period life expectancy at birth", "expectancy", "life_expectancy")
	if err != nil {
		return nil, err
	}

	out := make([]LifespanRow, 0, len(records))
	for n, rec := range records {
		line := n + 2
		year, err := parseInt(line, "year", rec[yi])
		if err != nil {
			return nil, err
		}
		e, err := parseFloat(line, "expectancy", rec[ei])
		if err != nil {
			return nil, err
		}
		out = append(out, LifespanRow{Year: year, Expectancy: e})
	}
	return out, nil
}
