package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/filter"
)

const sampleCSV = `Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
1,CCAFS LC-40,0,0,F9 v1.0  B0003,v1.0
2,CCAFS LC-40,0,0,F9 v1.0  B0004,v1.0
3,VAFB SLC-4E,0,500,F9 v1.1  B1003,v1.1
4,CCAFS LC-40,1,2296,F9 FT B1019,FT
5,KSC LC-39A,1,2490,F9 FT B1031.1,FT
6,VAFB SLC-4E,1,9600,F9 B4 B1041.1,B4
7,KSC LC-39A,0,5300,F9 FT  B1030,FT
8,CCAFS SLC-40,1,3669,F9 B5 B1046.2,B5
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func loadSample(t *testing.T) *Store {
	t.Helper()
	st, err := Load(context.Background(), Source{Path: writeFile(t, "launches.csv", []byte(sampleCSV))})
	require.NoError(t, err)
	return st
}

func TestLoad_CSV(t *testing.T) {
	st := loadSample(t)

	require.Equal(t, 8, st.Len())
	first := st.Records()[0]
	assert.Equal(t, types.LaunchRecord{
		Site: "CCAFS LC-40", PayloadMassKg: 0, OutcomeClass: 0, BoosterCategory: "v1.0",
	}, first)
	assert.Equal(t, 9600.0, st.Records()[5].PayloadMassKg)
	assert.Equal(t, "B4", st.Records()[5].BoosterCategory)
}

func TestDistinctSites_FirstOccurrenceOrder(t *testing.T) {
	st := loadSample(t)
	assert.Equal(t,
		[]string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"},
		st.DistinctSites())
	assert.True(t, st.HasSite("KSC LC-39A"))
	assert.False(t, st.HasSite("Boca Chica"))
}

func TestDistinctSites_ReturnsCopy(t *testing.T) {
	st := loadSample(t)
	sites := st.DistinctSites()
	sites[0] = "mutated"
	assert.Equal(t, "CCAFS LC-40", st.DistinctSites()[0])
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestLoad_MissingColumn(t *testing.T) {
	p := writeFile(t, "bad.csv", []byte("Launch Site,class,Payload Mass (kg)\nA,1,100\n"))
	_, err := Load(context.Background(), Source{Path: p})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColumnCategory)
}

func TestLoad_NonNumericPayload(t *testing.T) {
	p := writeFile(t, "bad.csv", []byte(
		"Launch Site,class,Payload Mass (kg),Booster Version Category\nA,1,heavy,FT\n"))
	_, err := Load(context.Background(), Source{Path: p})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_NonFinitePayload(t *testing.T) {
	for _, v := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity"} {
		p := writeFile(t, "bad.csv", []byte(
			"Launch Site,class,Payload Mass (kg),Booster Version Category\nA,1,"+v+",FT\n"))
		_, err := Load(context.Background(), Source{Path: p})
		assert.ErrorIs(t, err, ErrMalformed, v)
	}
}

func TestParseCSV_NonFinitePayload(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(
		"Launch Site,class,Payload Mass (kg),Booster Version Category\nA,1,NaN,FT\n"), "inline")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_ReservedSiteName(t *testing.T) {
	for _, site := range []string{"ALL", `"   "`, `""`} {
		p := writeFile(t, "reserved.csv", []byte(
			"Launch Site,class,Payload Mass (kg),Booster Version Category\nKSC LC-39A,1,100,FT\n"+site+",0,200,FT\n"))
		_, err := Load(context.Background(), Source{Path: p})
		assert.ErrorIs(t, err, ErrMalformed, site)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	p := writeFile(t, "empty.csv", nil)
	_, err := Load(context.Background(), Source{Path: p, Format: FormatCSV})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(context.Background(), Source{Path: t.TempDir()})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_UnknownFormat(t *testing.T) {
	p := writeFile(t, "launches.csv", []byte(sampleCSV))
	_, err := Load(context.Background(), Source{Path: p, Format: "parquet"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_Brotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	p := writeFile(t, "launches.csv.br", buf.Bytes())
	st, err := Load(context.Background(), Source{Path: p})
	require.NoError(t, err)
	assert.Equal(t, 8, st.Len())
}

func TestParseCSV_ColumnOrderAndFloatClass(t *testing.T) {
	in := "Booster Version Category,Payload Mass (kg),class,Launch Site\nFT, 1500.5 ,1.0,KSC LC-39A\n"
	recs, err := ParseCSV(bytes.NewBufferString(in), "inline")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.LaunchRecord{
		Site: "KSC LC-39A", PayloadMassKg: 1500.5, OutcomeClass: 1, BoosterCategory: "FT",
	}, recs[0])
}

func TestParseCSV_ByteOrderMark(t *testing.T) {
	in := "\ufeffLaunch Site,Payload Mass (kg),class,Booster Version Category\nA,1,1,FT\n"
	recs, err := ParseCSV(bytes.NewBufferString(in), "inline")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseCSV_FractionalClass(t *testing.T) {
	in := "Launch Site,Payload Mass (kg),class,Booster Version Category\nA,1,0.5,FT\n"
	_, err := ParseCSV(bytes.NewBufferString(in), "inline")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPayloadDomain(t *testing.T) {
	st := loadSample(t)
	lo, hi, ok := st.PayloadDomain()
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 9600.0, hi)

	_, _, ok = FromRecords(nil).PayloadDomain()
	assert.False(t, ok)
}

func TestQuery_MatchesFilter(t *testing.T) {
	st := loadSample(t)
	sels := []types.SiteSelection{types.AllSites, "CCAFS LC-40", "KSC LC-39A", "nowhere"}
	ranges := []types.PayloadRange{
		types.DefaultPayloadRange(),
		{Min: 0, Max: 0},
		{Min: 500, Max: 5300},
		{Min: 5300, Max: 500},
		{Min: 5000, Max: 5000},
		{Min: 9600, Max: 20000},
	}
	for _, sel := range sels {
		for _, rng := range ranges {
			want := filter.Filter(st.Records(), sel, rng)
			got := st.Query(sel, rng)
			assert.Equal(t, want, got, "sel=%q rng=%v", sel, rng)
		}
	}
}

func TestQuery_EmptyIsNotNil(t *testing.T) {
	st := loadSample(t)
	got := st.Query(types.AllSites, types.PayloadRange{Min: 5000, Max: 5000})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFromRecords_Copies(t *testing.T) {
	in := []types.LaunchRecord{{Site: "A", PayloadMassKg: 1}}
	st := FromRecords(in)
	in[0].Site = "B"
	assert.Equal(t, "A", st.Records()[0].Site)
}
