package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tt.UTC()
}

func TestAffectedKeys(t *testing.T) {
	ts := mustTime(t, "2025-01-01T00:00:00Z")
	existing := Fields{"email": "a@x.io", "name": "A", "updatedAt": ts, "n": int64(3)}

	t.Run("unchanged_values_are_not_affected", func(t *testing.T) {
		proposed := Merge(existing, Fields{"name": "A", "n": float64(3), "updatedAt": ts.In(time.FixedZone("x", 3600))})
		assert.Empty(t, AffectedKeys(existing, proposed))
	})

	t.Run("changed_added_removed", func(t *testing.T) {
		proposed := existing.Clone()
		proposed["name"] = "B"
		proposed["phoneNumber"] = "123"
		delete(proposed, "n")
		assert.Equal(t, []string{"n", "name", "phoneNumber"}, AffectedKeys(existing, proposed))
	})

	t.Run("nested_map_change", func(t *testing.T) {
		a := Fields{"location": map[string]any{"lat": 1.0, "lng": 2.0}}
		b := Fields{"location": map[string]any{"lat": 1.0, "lng": 2.5}}
		assert.Equal(t, []string{"location"}, AffectedKeys(a, b))
	})
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(int64(2), 2.0))
	assert.False(t, ValuesEqual("2", int64(2)))
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(nil, false))
	assert.True(t, ValuesEqual([]any{"a", int64(1)}, []any{"a", 1.0}))
	assert.False(t, ValuesEqual([]any{"a"}, []any{"a", "b"}))
}

func TestFieldsKinds(t *testing.T) {
	f := Fields{
		"s":  "x",
		"b":  true,
		"t":  time.Now(),
		"n":  int64(1),
		"m":  map[string]any{},
		"l":  []any{},
		"nl": nil,
	}
	assert.True(t, f.IsKind("s", ValueString))
	assert.True(t, f.IsKind("b", ValueBool))
	assert.True(t, f.IsKind("t", ValueTimestamp))
	assert.True(t, f.IsKind("n", ValueNumber))
	assert.True(t, f.IsKind("m", ValueMap))
	assert.True(t, f.IsKind("l", ValueList))
	assert.True(t, f.IsKind("nl", ValueNull))
	assert.False(t, f.IsKind("missing", ValueNull))
	assert.True(t, f.HasAll("s", "b"))
	assert.False(t, f.HasAll("s", "zzz"))
}

func TestNormalizeFields_FromJSON(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"a":1,"b":1.5,"c":["x",{"d":2}],"e":null}`))
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))

	f, err := NormalizeFields(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f["a"])
	assert.Equal(t, 1.5, f["b"])
	list := f["c"].([]any)
	assert.Equal(t, int64(2), list[1].(map[string]any)["d"])
	assert.Nil(t, f["e"])

	_, err = NormalizeFields(map[string]any{"bad": struct{}{}})
	assert.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	ts := mustTime(t, "2025-03-04T05:06:07Z").Add(123 * time.Millisecond)
	in := Fields{
		"name":      "Downtown",
		"total":     int64(9007199254740993),
		"price":     12.5,
		"active":    true,
		"createdAt": ts,
		"location":  map[string]any{"lat": 30.1, "lng": 31.2},
		"readBy":    []any{"u1", "u2"},
		"nothing":   nil,
	}
	b, err := EncodeFields(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"timestampValue":"2025-03-04T05:06:07.123Z"`)
	assert.Contains(t, string(b), `"integerValue":"9007199254740993"`)

	out, err := DecodeFields(b)
	require.NoError(t, err)
	assert.Empty(t, AffectedKeys(in, out))
	assert.Equal(t, int64(9007199254740993), out["total"])
	assert.True(t, out.IsKind("createdAt", ValueTimestamp))
	assert.True(t, out.Has("nothing"))
}

func TestCodec_RejectsGarbage(t *testing.T) {
	_, err := DecodeFields([]byte(`{"a":{"integerValue":"x"}}`))
	assert.Error(t, err)
	_, err = DecodeFields([]byte(`not json`))
	assert.Error(t, err)
}

func TestRoles(t *testing.T) {
	assert.True(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("root"))
	assert.Equal(t, "user", RoleOrDefault(""))
	assert.Equal(t, "admin", RoleOrDefault("admin"))
	assert.Equal(t, "active", StatusOrDefault(""))
}

func TestErrors(t *testing.T) {
	err := ErrPermissionDenied()
	assert.True(t, Is(err, "permission_denied"))
	assert.Nil(t, err.Meta)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))

	relay := ErrMailRelay(assert.AnError)
	assert.True(t, strings.HasPrefix(relay.Message, "Failed to send OTP email: "))
	assert.ErrorIs(t, relay, assert.AnError)
}
