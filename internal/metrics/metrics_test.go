package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(validations.WithLabelValues("out_of_range"))
	IncValidation("out_of_range")
	assert.Equal(t, before+1, testutil.ToFloat64(validations.WithLabelValues("out_of_range")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("validate"))
	IncHTTP("validate")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("validate")))

	before = testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	IncCacheLookup("hit")
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))

	before = testutil.ToFloat64(doctorsReloaded)
	IncDoctorsReloaded()
	assert.Equal(t, before+1, testutil.ToFloat64(doctorsReloaded))
}
