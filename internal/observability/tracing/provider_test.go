package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

type passengerLookupError struct{ email string }

func (e passengerLookupError) Error() string { return "lookup failed for " + e.email }

func TestSafeAttributesKeepsAllowList(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/checkin/confirm"),
		attribute.String("passenger.email", "ana@example.com"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorHidesMessage(t *testing.T) {
	err := SafeError(passengerLookupError{email: "ana@example.com"})
	assert.NotContains(t, err.Error(), "ana@example.com")
	assert.Nil(t, SafeError(nil))
	assert.Equal(t, "*errors.errorString", SafeError(errors.New("boom")).Error())
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}

func TestResourceAttributesCarryStore(t *testing.T) {
	attrs := resourceAttributes(Config{ServiceName: "airlink", StoreCurrency: "CLP", StoreTimezone: "America/Santiago"})
	values := map[attribute.Key]string{}
	for _, kv := range attrs {
		values[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "CLP", values["airlink.store.currency"])
	assert.Equal(t, "America/Santiago", values["airlink.store.timezone"])

	assert.Len(t, resourceAttributes(Config{}), 3)
}
