package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func TestLoadFile(t *testing.T) {
	table, err := LoadFile("testdata/catalog.csv", Options{AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, table.Records, 9)
	assert.Empty(t, table.Warnings)

	first := table.Records[0]
	assert.Equal(t, "Marketing", first.Department)
	assert.Equal(t, "Page Views", first.MetricName)
	assert.True(t, first.VisibleInDashboard)
	assert.False(t, first.UsedInDecisionMaking)
	assert.True(t, first.ExecutiveRequested)
	assert.False(t, first.LastReviewed.Known)
	assert.Equal(t, "Traffic without conversion context", first.InterpretationNotes)

	headcount := table.Records[7]
	assert.Equal(t, schema.DaysAgo("6 months ago", 180), headcount.LastReviewed)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/nope.csv", Options{})
	assert.Error(t, err)
}

func TestReadCSVHeaderNormalization(t *testing.T) {
	in := "\ufeffdepartment,metric name,VisibleInDashboard,used-in-decision-making,EXECUTIVE_REQUESTED,last reviewed,metric_last_used_for_decision\n" +
		"Ops,Uptime,y,Y,n,today,yesterday\n"
	table, err := ReadCSV(strings.NewReader(in), Options{AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	rec := table.Records[0]
	assert.True(t, rec.VisibleInDashboard)
	assert.True(t, rec.UsedInDecisionMaking)
	assert.False(t, rec.ExecutiveRequested)
	assert.Equal(t, 0, rec.LastReviewed.Days)
	assert.Equal(t, 1, rec.LastUsedForDecision.Days)
	assert.Empty(t, rec.InterpretationNotes)
}

func TestReadCSVRejections(t *testing.T) {
	header := "Department,Metric_Name,Visible_in_Dashboard,Used_in_Decision_Making,Executive_Requested,Last_Reviewed,Metric_Last_Used_For_Decision\n"
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty input", body: "", want: "catalog is empty"},
		{name: "missing columns", body: "Department,Metric_Name\nOps,Uptime\n", want: "Visible_in_Dashboard"},
		{name: "missing department", body: header + ",Uptime,yes,yes,no,never,never\n", want: "missing Department"},
		{name: "missing metric name", body: header + "Ops, ,yes,yes,no,never,never\n", want: "missing Metric_Name"},
		{name: "duplicate key", body: header + "Ops,Uptime,yes,yes,no,never,never\nOps,Uptime,no,no,no,never,never\n", want: "duplicate metric Ops/Uptime on lines 2 and 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.body), Options{AsOf: asOf})
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, table)
		})
	}
}

func TestReadCSVSameNameAcrossDepartments(t *testing.T) {
	in := "Department,Metric_Name,Visible_in_Dashboard,Used_in_Decision_Making,Executive_Requested,Last_Reviewed,Metric_Last_Used_For_Decision\n" +
		"Ops,Uptime,yes,yes,no,never,never\n" +
		"IT,Uptime,yes,yes,no,never,never\n"
	table, err := ReadCSV(strings.NewReader(in), Options{AsOf: asOf})
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)
}

func TestReadCSVWarnsOnAmbiguousValues(t *testing.T) {
	in := "Department,Metric_Name,Visible_in_Dashboard,Used_in_Decision_Making,Executive_Requested,Last_Reviewed,Metric_Last_Used_For_Decision\n" +
		"Ops,Uptime,sometimes,yes,,a while back,last week\n"
	table, err := ReadCSV(strings.NewReader(in), Options{AsOf: asOf})
	require.NoError(t, err)

	rec := table.Records[0]
	assert.False(t, rec.VisibleInDashboard)
	assert.False(t, rec.ExecutiveRequested)
	assert.False(t, rec.LastReviewed.Known)
	assert.Equal(t, "a while back", rec.LastReviewed.Raw)
	assert.Equal(t, 14, rec.LastUsedForDecision.Days)

	require.Len(t, table.Warnings, 3)
	assert.Equal(t, ColVisibleInDashboard, table.Warnings[0].Field)
	assert.Equal(t, "false", table.Warnings[0].Fallback)
	assert.Equal(t, ColExecutiveRequested, table.Warnings[1].Field)
	assert.Equal(t, ColLastReviewed, table.Warnings[2].Field)
	assert.Equal(t, "never", table.Warnings[2].Fallback)
	assert.Equal(t, 2, table.Warnings[2].Row)
	assert.Contains(t, table.Warnings[2].String(), "Ops/Uptime")
}

func TestReadCSVWarnsOnFutureDates(t *testing.T) {
	in := "Department,Metric_Name,Visible_in_Dashboard,Used_in_Decision_Making,Executive_Requested,Last_Reviewed,Metric_Last_Used_For_Decision\n" +
		"Sales,Forecast Accuracy,yes,yes,no,2025-06-01,2030-01-01\n"
	table, err := ReadCSV(strings.NewReader(in), Options{AsOf: asOf})
	require.NoError(t, err)

	rec := table.Records[0]
	assert.True(t, rec.LastReviewed.Known)
	assert.False(t, rec.LastUsedForDecision.Known)
	assert.Equal(t, "2030-01-01", rec.LastUsedForDecision.Raw)

	require.Len(t, table.Warnings, 1)
	assert.Equal(t, ColLastUsedForDecision, table.Warnings[0].Field)
	assert.Equal(t, "never", table.Warnings[0].Fallback)
}

func TestReadCSVSkipsBlankRowsAndFilters(t *testing.T) {
	in := "Department,Metric_Name,Visible_in_Dashboard,Used_in_Decision_Making,Executive_Requested,Last_Reviewed,Metric_Last_Used_For_Decision\n" +
		"Ops,Uptime,yes,yes,no,never,never\n" +
		",,,,,,\n" +
		"Sales,Win Rate,no,yes,yes,last month,last month\n"
	table, err := ReadCSV(strings.NewReader(in), Options{AsOf: asOf, Departments: []string{"sales"}})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "Win Rate", table.Records[0].MetricName)
}

func TestFilterRecordsEmptyResult(t *testing.T) {
	got := FilterRecords([]schema.MetricRecord{{Department: "Ops", MetricName: "x"}}, []string{"HR"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
