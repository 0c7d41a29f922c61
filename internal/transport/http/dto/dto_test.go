package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raknago/parking-backend/internal/domain"
)

func TestToDocumentView_RendersTimestamps(t *testing.T) {
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	v := ToDocumentView(domain.Document{
		Collection: "users",
		ID:         "u1",
		Fields:     domain.Fields{"createdAt": ts, "name": "A"},
		CreateTime: ts,
	})

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "u1",
		"collection": "users",
		"fields": {"createdAt": "2026-05-01T10:00:00Z", "name": "A"},
		"createTime": "2026-05-01T10:00:00Z"
	}`, string(b))
}

func TestToDocumentList_EmptyIsArray(t *testing.T) {
	b, err := json.Marshal(ToDocumentList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"documents":[]}`, string(b))

	b, err = json.Marshal(ToDocumentView(domain.Document{ID: "x"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","collection":"","fields":{}}`, string(b))
}

func TestSendOTPEmailRequest_Decode(t *testing.T) {
	var req SendOTPEmailRequest
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"email":"a@x.io","otp":"123456"}}`), &req))
	assert.Equal(t, "a@x.io", req.Data.Email)
	assert.EqualValues(t, "123456", req.Data.OTP)

	require.NoError(t, json.Unmarshal([]byte(`{"data":{"email":"a@x.io","otp":123456}}`), &req))
	assert.EqualValues(t, "123456", req.Data.OTP)
}
