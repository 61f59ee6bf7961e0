package types

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"is_active"`
}

func TestToRowAndDecode(t *testing.T) {
	id := uuid.New()
	row, err := ToRow(sample{ID: id, Name: "Green Mart", Active: true})
	require.NoError(t, err)

	assert.Equal(t, id.String(), row["id"])
	assert.Equal(t, true, row["is_active"])

	back, err := DecodeRow[sample](row)
	require.NoError(t, err)
	assert.Equal(t, id, back.ID)
	assert.Equal(t, "Green Mart", back.Name)
}

func TestDecodeRowsStopsOnBadRow(t *testing.T) {
	rows := []Row{
		{"id": uuid.NewString(), "name": "ok"},
		{"id": "not-a-uuid"},
	}
	_, err := DecodeRows[sample](rows)
	assert.Error(t, err)
}

func TestQueryOrderByCopies(t *testing.T) {
	base := Where(Eq("shop_id", "x"))
	ordered := base.OrderBy("created_at", true)

	assert.Nil(t, base.Order)
	require.NotNil(t, ordered.Order)
	assert.Equal(t, "created_at", ordered.Order.Column)
	assert.True(t, ordered.Order.Descending)
}

func TestAPIErrorUnwrap(t *testing.T) {
	assert.True(t, errors.Is(&APIError{Status: 401}, ErrUnauthorized))
	assert.True(t, errors.Is(&APIError{Status: 404}, ErrNotFound))
	assert.False(t, errors.Is(&APIError{Status: 500}, ErrUnauthorized))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Session{}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Second)}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Expired(now))
}
