package controller

import (
	"net/http"
	"testing"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRatingControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerDB(t)
	ctrl := NewRatingController(service.NewRatingService(testDB, nil))

	router := gin.New()
	router.GET("/ssr", ctrl.List)
	router.GET("/rating", ctrl.Count)
	router.POST("/comment", ctrl.CreateComment)
	router.POST("/comment_update", ctrl.UpdateComment)
	router.DELETE("/comment_delete", ctrl.DeleteComment)
	router.DELETE("/rate_delete", ctrl.DeleteByID)
	router.POST("/admin/reconcile", ctrl.Reconcile)
	return router, testDB
}

func seedEstablishment(t *testing.T, testDB *gorm.DB, name string, ave int) *model.Establishment {
	t.Helper()
	e := &model.Establishment{Name: name, Ave: ave}
	require.NoError(t, testDB.Create(e).Error)
	return e
}

func aveOf(t *testing.T, testDB *gorm.DB, id uint) int {
	t.Helper()
	var e model.Establishment
	require.NoError(t, testDB.First(&e, id).Error)
	return e.Ave
}

func TestRatingController_CommentWithoutCounter(t *testing.T) {
	router, testDB := setupRatingControllerTest(t)
	cafe := seedEstablishment(t, testDB, "Cafe X", 0)

	for _, counter := range []interface{}{nil, ""} {
		w := performJSON(t, router, http.MethodPost, "/comment", map[string]interface{}{
			"username":    "alice",
			"comment":     "no stars given",
			"counter":     counter,
			"feNameQuery": "Cafe X",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created commentResponse
		decodeJSON(t, w, &created)
		assert.Zero(t, created.Counter)
	}
	assert.Equal(t, 2, aveOf(t, testDB, cafe.ID))
}

func TestRatingController_CommentLifecycle(t *testing.T) {
	router, testDB := setupRatingControllerTest(t)
	cafe := seedEstablishment(t, testDB, "Cafe X", 5)

	w := performJSON(t, router, http.MethodPost, "/comment", map[string]interface{}{
		"username":    "alice",
		"comment":     "great adobo",
		"counter":     "4",
		"feNameQuery": "Cafe X",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created commentResponse
	decodeJSON(t, w, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, 4, created.Counter)
	assert.Equal(t, "Cafe X", created.FeNameQuery)
	assert.False(t, created.SecretDate.IsZero())
	assert.Equal(t, 6, aveOf(t, testDB, cafe.ID))

	w = performJSON(t, router, http.MethodPost, "/comment_update", map[string]interface{}{
		"username":    "alice",
		"comment":     "even better",
		"counter":     5,
		"feNameQuery": "Cafe X",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 6, aveOf(t, testDB, cafe.ID))

	w = performJSON(t, router, http.MethodDelete, "/comment_delete", map[string]interface{}{
		"username":    "alice",
		"feNameQuery": "Cafe X",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Comment deleted successfully")
	assert.Equal(t, 5, aveOf(t, testDB, cafe.ID))

	var remaining int64
	require.NoError(t, testDB.Model(&model.Rating{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestRatingController_Errors(t *testing.T) {
	router, testDB := setupRatingControllerTest(t)
	seedEstablishment(t, testDB, "Cafe X", 0)

	tests := []struct {
		name         string
		method       string
		path         string
		body         interface{}
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "missing username",
			method:       http.MethodPost,
			path:         "/comment",
			body:         map[string]interface{}{"feNameQuery": "Cafe X"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.InvalidRequest,
		},
		{
			name:         "update without rating",
			method:       http.MethodPost,
			path:         "/comment_update",
			body:         map[string]interface{}{"username": "bob", "feNameQuery": "Cafe X"},
			expectedCode: http.StatusNotFound,
			expectedErr:  apperrors.RatingNotFound,
		},
		{
			name:         "delete for unknown establishment",
			method:       http.MethodDelete,
			path:         "/comment_delete",
			body:         map[string]interface{}{"username": "bob", "feNameQuery": "Nowhere"},
			expectedCode: http.StatusNotFound,
			expectedErr:  apperrors.EstablishmentNotFound,
		},
		{
			name:         "delete unknown rating id",
			method:       http.MethodDelete,
			path:         "/rate_delete",
			body:         map[string]interface{}{"id": "999"},
			expectedCode: http.StatusNotFound,
			expectedErr:  apperrors.RatingNotFound,
		},
		{
			name:         "rate delete without id",
			method:       http.MethodDelete,
			path:         "/rate_delete",
			body:         map[string]interface{}{},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.InvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedErr, errorCode(t, w))
		})
	}
}

func TestRatingController_DeleteByIDAndCount(t *testing.T) {
	router, testDB := setupRatingControllerTest(t)
	cafe := seedEstablishment(t, testDB, "Cafe X", 0)

	w := performJSON(t, router, http.MethodPost, "/comment", map[string]interface{}{
		"username": "alice", "counter": 3, "feNameQuery": "Cafe X",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created commentResponse
	decodeJSON(t, w, &created)

	w = performJSON(t, router, http.MethodGet, "/rating", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count []map[string]int64
	decodeJSON(t, w, &count)
	require.Len(t, count, 1)
	assert.Equal(t, int64(1), count[0]["count"])

	w = performJSON(t, router, http.MethodDelete, "/rate_delete", map[string]interface{}{"id": created.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rating deleted successfully")
	assert.Equal(t, 0, aveOf(t, testDB, cafe.ID))
}

func TestRatingController_Reconcile(t *testing.T) {
	router, testDB := setupRatingControllerTest(t)
	cafe := seedEstablishment(t, testDB, "Cafe X", 0)
	require.NoError(t, testDB.Create(&model.Rating{Username: "alice", EstablishmentName: "Cafe X", Score: 5}).Error)

	w := performJSON(t, router, http.MethodPost, "/admin/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report service.ReconcileReport
	decodeJSON(t, w, &report)
	assert.Equal(t, int64(1), report.Relinked)
	assert.Equal(t, 1, report.Corrected)
	assert.Equal(t, 1, aveOf(t, testDB, cafe.ID))
}
