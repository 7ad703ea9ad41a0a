package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func counterValue(t *testing.T, outcome string) float64 {
	t.Helper()
	return testutil.ToFloat64(RegistrationAdmissions.WithLabelValues(outcome))
}

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestRegisterDatabaseMetricsObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterDatabaseMetrics(db))
	require.NoError(t, db.AutoMigrate(&probe{}))

	before := testutil.CollectAndCount(DatabaseQueryLatency)
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var got probe
	require.NoError(t, db.First(&got).Error)

	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
}
