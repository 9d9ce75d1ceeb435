package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1", "on", " Yes "} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0", "off"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestParseColumnList(t *testing.T) {
	assert.Nil(t, ParseColumnList(""))
	assert.Nil(t, ParseColumnList("  "))
	assert.Equal(t, []string{"a"}, ParseColumnList("a"))
	assert.Equal(t, []string{"a", "b"}, ParseColumnList(" a , b ,"))
}

func TestParseNumericColsSpec(t *testing.T) {
	specs, err := ParseNumericColsSpec("amount:0,1e6,5e6;days:4")
	require.NoError(t, err)
	assert.Equal(t, BinSpec{Edges: []float64{0, 1e6, 5e6}}, specs["amount"])
	assert.Equal(t, BinSpec{Quantiles: 4}, specs["days"])

	empty, err := ParseNumericColsSpec("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for name, spec := range map[string]string{
		"no colon":          "amount",
		"empty column name": ":1,2",
		"empty spec":        "amount:",
		"bad edge":          "amount:1,two",
		"bad quantiles":     "days:four",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNumericColsSpec(spec)
			assert.Error(t, err)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))

	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/db"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db"))

	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "postgres://localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost port=5432 dbname=cache"))
}

func TestGetPlainLabel(t *testing.T) {
	assert.Equal(t, "Critical", GetPlainLabel(schema.PriorityCritical))
	assert.Equal(t, "Investigate", GetPlainLabel(schema.PriorityInvestigate))
	assert.Equal(t, "Monitor", GetPlainLabel(schema.PriorityMonitor))
	assert.Equal(t, "Low", GetPlainLabel(schema.PriorityLow))
}
