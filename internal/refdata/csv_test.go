package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/family-tree/internal/model"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// classicLayout is the column layout of the published reference files.
func classicLayout() map[string]string {
	return map[string]string{
		RatesFile: "decade,birth_rate,marriage_rate\n" +
			"1950s,2.9,0.8\n" +
			"1960s,2.5,0.7\n",
		FirstNamesFile: "decade,gender,name,frequency\n" +
			"1950s,male,JAMES,0.05\n" +
			"1950s,female,MARY,0.06\n" +
			"1960s,female,Lisa,0.04\n",
		LastNamesFile: "Decade,Rank,LastName\n" +
			"1950s,1,SMITH\n" +
			"1950s,2,JOHNSON\n" +
			"1950s,3,McDonald\n",
		RankProbabilityFile: "0.5,0.3,0.2\n",
		LifeExpectancyFile: "Entity,Code,Year,Period life expectancy at birth\n" +
			"United States,USA,1950,68.1\n" +
			"United States,USA,1951,68.4\n",
	}
}

func TestLoadDir_ClassicLayout(t *testing.T) {
	tables, err := LoadDir(writeFiles(t, classicLayout()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	r, err := tables.RatesFor(1960)
	if err != nil || r.BirthRate != 2.5 || r.MarriageRate != 0.7 {
		t.Errorf("unexpected rates %+v, err %v", r, err)
	}

	males := tables.FirstNamesFor(1950, model.Male)
	if len(males) != 1 || males[0].Name != "James" {
		t.Errorf("expected normalized James, got %+v", males)
	}

	surnames := tables.SurnamesFor(1950, RankOnly)
	want := []WeightedName{{"Smith", 0.5}, {"Johnson", 0.3}, {"McDonald", 0.2}}
	if len(surnames) != len(want) {
		t.Fatalf("expected %d surnames, got %+v", len(want), surnames)
	}
	for i := range want {
		if surnames[i] != want[i] {
			t.Errorf("surname %d = %+v, want %+v", i, surnames[i], want[i])
		}
	}

	if e, err := tables.ExpectancyFor(1951); err != nil || e != 68.4 {
		t.Errorf("unexpected expectancy %v, err %v", e, err)
	}
}

func TestLoadDir_RowLayouts(t *testing.T) {
	files := classicLayout()
	files[FirstNamesFile] = "year,gender,name,frequency\n1950,M,Tom,3\n1950,F,Ann,4\n"
	files[LastNamesFile] = "rank,name\n1,Garcia\n2,Lee\n"
	files[RankProbabilityFile] = "decade,rank,probability\n,1,0.6\n,2,0.4\n1950s,2,0.9\n"
	files[LifeExpectancyFile] = "year,expectancy\n1950,70\n"

	tables, err := LoadDir(writeFiles(t, files))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if f := tables.FirstNamesFor(1950, model.Female); len(f) != 1 || f[0].Name != "Ann" {
		t.Errorf("unexpected female names %+v", f)
	}

	scoped := tables.SurnamesFor(1980, DecadeScoped)
	if len(scoped) != 2 || scoped[0].Name != "Garcia" || scoped[0].Weight != 0.6 {
		t.Errorf("unexpected surnames %+v", scoped)
	}
	scoped1950 := tables.SurnamesFor(1950, DecadeScoped)
	if scoped1950[1].Weight != 0.9 {
		t.Errorf("expected decade-scoped weight 0.9, got %+v", scoped1950)
	}
	if e, _ := tables.ExpectancyFor(1955); e != 70 {
		t.Errorf("expected decade fallback 70, got %v", e)
	}
}

func TestLoadDir_RankFileOptional(t *testing.T) {
	files := classicLayout()
	delete(files, RankProbabilityFile)

	tables, err := LoadDir(writeFiles(t, files))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, s := range tables.SurnamesFor(1950, RankOnly) {
		if s.Weight != 1 {
			t.Errorf("expected uniform weights, got %+v", s)
		}
	}
}

func TestLoadDir_Errors(t *testing.T) {
	t.Run("missing required file", func(t *testing.T) {
		files := classicLayout()
		delete(files, RatesFile)
		_, err := LoadDir(writeFiles(t, files))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		files := classicLayout()
		files[RatesFile] = "decade,birth_rate\n1950s,2.0\n"
		_, err := LoadDir(writeFiles(t, files))
		if !errors.Is(err, ErrInvalidTable) {
			t.Errorf("expected ErrInvalidTable, got %v", err)
		}
	})

	t.Run("bad number", func(t *testing.T) {
		files := classicLayout()
		files[FirstNamesFile] = "decade,gender,name,frequency\n1950s,male,James,lots\n"
		if _, err := LoadDir(writeFiles(t, files)); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unknown gender", func(t *testing.T) {
		files := classicLayout()
		files[FirstNamesFile] = "decade,gender,name,frequency\n1950s,other,Sam,1\n"
		if _, err := LoadDir(writeFiles(t, files)); err == nil {
			t.Error("expected gender error")
		}
	})

	t.Run("out of range marriage rate", func(t *testing.T) {
		files := classicLayout()
		files[RatesFile] = "decade,birth_rate,marriage_rate\n1950s,2.0,1.2\n"
		_, err := LoadDir(writeFiles(t, files))
		if !errors.Is(err, ErrInvalidTable) {
			t.Errorf("expected ErrInvalidTable, got %v", err)
		}
	})
}
