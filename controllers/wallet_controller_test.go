package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nadifalfairuz/digistore/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkInContext(key string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/v1/wallet/"+key+"/check-in", nil)
	c.Params = gin.Params{{Key: "key", Value: key}}
	return c, w
}

func TestCheckInAwardsOncePerDay(t *testing.T) {
	db := newTestDB(t)

	yesterday := time.Now().Add(-24 * time.Hour)
	pk := models.PaymentKey{Key: "PK-CHECKIN000001", Email: "budi@example.com", Points: 5, LastCheckIn: &yesterday}
	require.NoError(t, db.Create(&pk).Error)

	c, w := checkInContext(pk.Key)
	CheckIn(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.PaymentKey
	require.NoError(t, db.First(&got, pk.ID).Error)
	assert.Equal(t, 5+checkInPoints, got.Points)
	require.NotNil(t, got.LastCheckIn)

	// second check-in on the same day is rejected and awards nothing
	c, w = checkInContext(pk.Key)
	CheckIn(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.First(&got, pk.ID).Error)
	assert.Equal(t, 5+checkInPoints, got.Points)
}

func TestCheckInUnknownKey(t *testing.T) {
	newTestDB(t)

	c, w := checkInContext("PK-DOESNOTEXIST1")
	CheckIn(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
