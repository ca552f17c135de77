package kernels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nutristats/internal/dataset"
)

const minimiseQuestion = "Percent of adults aged 18 years and older who have obesity"

// buildFixture writes rows under the standard CSV header and loads them
// as a Dataset.
func buildFixture(t *testing.T, rows string) *dataset.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.csv")
	body := "LocationDesc,Question,Data_Value,StratificationCategory1,Stratification1\n" + rows
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	return ds
}

// q1Fixture reproduces the four-row fixture used by spec.md §8's
// concrete scenarios, using a real minimise-is-best catalog question so
// best5/worst5 exercise the ranking logic end to end.
func q1Fixture(t *testing.T) *dataset.Dataset {
	return buildFixture(t, ""+
		"CA,"+minimiseQuestion+",10.0,Total,Total\n"+
		"CA,"+minimiseQuestion+",30.0,Total,Total\n"+
		"TX,"+minimiseQuestion+",40.0,Total,Total\n"+
		"NY,"+minimiseQuestion+",50.0,Total,Total\n")
}

func TestStatesMean(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"CA":20.0,"TX":40.0,"NY":50.0}`, StatesMean(ds, minimiseQuestion))
}

func TestStatesMeanNoMatch(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, "{}", StatesMean(ds, "nonexistent question"))
}

func TestStateMean(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"CA":20.0}`, StateMean(ds, minimiseQuestion, "CA"))
}

func TestStateMeanNoMatch(t *testing.T) {
	ds := q1Fixture(t)
	require.Equal(t, "", StateMean(ds, minimiseQuestion, "WA"))
}

func TestBest5AscendingForMinimiseIsBest(t *testing.T) {
	ds := q1Fixture(t)
	require.Equal(t, `{"CA":20,"TX":40,"NY":50}`, Best5(ds, minimiseQuestion))
}

func TestWorst5DescendingForMinimiseIsBest(t *testing.T) {
	ds := q1Fixture(t)
	require.Equal(t, `{"NY":50,"TX":40,"CA":20}`, Worst5(ds, minimiseQuestion))
}

func TestBest5UnrankedQuestion(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"error":"Question not found in predefined lists"}`, Best5(ds, "an unlisted question"))
}

func TestBest5NoData(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"error":"No data available for the given question"}`,
		Best5(ds, MaximiseIsBest[0]))
}

func TestBest5CapsAtFiveEntries(t *testing.T) {
	ds := buildFixture(t, ""+
		"S1,"+minimiseQuestion+",1.0,Total,Total\n"+
		"S2,"+minimiseQuestion+",2.0,Total,Total\n"+
		"S3,"+minimiseQuestion+",3.0,Total,Total\n"+
		"S4,"+minimiseQuestion+",4.0,Total,Total\n"+
		"S5,"+minimiseQuestion+",5.0,Total,Total\n"+
		"S6,"+minimiseQuestion+",6.0,Total,Total\n")

	require.Equal(t, `{"S1":1,"S2":2,"S3":3,"S4":4,"S5":5}`, Best5(ds, minimiseQuestion))
}

func TestGlobalMean(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"global_mean":32.5}`, GlobalMean(ds, minimiseQuestion))
}

func TestGlobalMeanNoData(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"global_mean":null}`, GlobalMean(ds, "nonexistent question"))
}

func TestDiffFromMean(t *testing.T) {
	ds := q1Fixture(t)
	require.Equal(t, `{"NY":-17.5,"TX":-7.5,"CA":12.5}`, DiffFromMean(ds, minimiseQuestion))
}

func TestDiffFromMeanNoData(t *testing.T) {
	ds := q1Fixture(t)
	require.Equal(t, "{}", DiffFromMean(ds, "nonexistent question"))
}

func TestMeanByCategoryOrdering(t *testing.T) {
	ds := buildFixture(t, ""+
		"CA,"+minimiseQuestion+",10.0,Gender,Male\n"+
		"CA,"+minimiseQuestion+",20.0,Age (years),18-24\n"+
		"CA,"+minimiseQuestion+",30.0,Age (years),25-34\n")

	got := MeanByCategory(ds, minimiseQuestion)
	require.Equal(t, `{"CA - (Age (years), 18-24)":20,"CA - (Age (years), 25-34)":30,"CA - (Gender, Male)":10}`, got)
}

func TestMeanByCategorySkipsEmptyCategoryOrStratum(t *testing.T) {
	ds := buildFixture(t, ""+
		"CA,"+minimiseQuestion+",10.0,,\n"+
		"CA,"+minimiseQuestion+",20.0,Gender,Male\n")

	require.Equal(t, `{"CA - (Gender, Male)":20}`, MeanByCategory(ds, minimiseQuestion))
}

func TestStateMeanByCategoryNoMatch(t *testing.T) {
	ds := q1Fixture(t)
	require.JSONEq(t, `{"error":"No data available for the given question"}`, StateMeanByCategory(ds, minimiseQuestion, "WA"))
}

func TestStateMeanByCategory(t *testing.T) {
	ds := buildFixture(t, ""+
		"CA,"+minimiseQuestion+",10.0,Gender,Male\n"+
		"CA,"+minimiseQuestion+",20.0,Gender,Female\n"+
		"TX,"+minimiseQuestion+",99.0,Gender,Male\n")

	require.Equal(t, `{"Gender, Female":20,"Gender, Male":10}`, StateMeanByCategory(ds, minimiseQuestion, "CA"))
}

func TestKernelsArePure(t *testing.T) {
	ds := q1Fixture(t)
	a := StatesMean(ds, minimiseQuestion)
	b := StatesMean(ds, minimiseQuestion)
	require.Equal(t, a, b)
}
