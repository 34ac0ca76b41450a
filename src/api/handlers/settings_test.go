package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rndosd/finclass/src/api/handlers"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
)

type stubSettingsController struct {
	lastPatch *schemas.MarketSettingsPatch
	err       error
}

func (c *stubSettingsController) GetClassSettings(_ context.Context, classID string) (*schemas.MarketSettingsResponse, error) {
	return &schemas.MarketSettingsResponse{ClassID: classID, CurrencyUnit: "points"}, c.err
}

func (c *stubSettingsController) UpdateClassSettings(_ context.Context, classID string, patch schemas.MarketSettingsPatch) (*schemas.MarketSettingsResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.lastPatch = &patch
	return &schemas.MarketSettingsResponse{ClassID: classID}, nil
}

func (c *stubSettingsController) GetGlobalSettings(_ context.Context) (*schemas.GlobalSettingsResponse, error) {
	return &schemas.GlobalSettingsResponse{}, c.err
}

func (c *stubSettingsController) UpdateGlobalSettings(_ context.Context, _ schemas.GlobalSettingsPatch) (*schemas.GlobalSettingsResponse, error) {
	return &schemas.GlobalSettingsResponse{}, c.err
}

func TestGetMarketSettingsHandler(t *testing.T) {
	h := &handlers.Handler{Settings: &stubSettingsController{}}

	rec := httptest.NewRecorder()
	h.GetMarketSettings(rec, authedRequest(http.MethodGet, "/api/settings", "", studentClaims()))
	require.Equal(t, http.StatusOK, rec.Code)

	var settings schemas.MarketSettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, "class-1", settings.ClassID)

	rec = httptest.NewRecorder()
	h.GetMarketSettings(rec, authedRequest(http.MethodGet, "/api/settings", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMarketSettingsHandler(t *testing.T) {
	t.Run("teachers can update", func(t *testing.T) {
		settings := &stubSettingsController{}
		h := &handlers.Handler{Settings: settings}

		rec := httptest.NewRecorder()
		h.UpdateMarketSettings(rec, authedRequest(http.MethodPatch, "/api/settings",
			`{"tradeFeeRate":"0.02"}`, teacherClaims()))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, settings.lastPatch)
		require.NotNil(t, settings.lastPatch.TradeFeeRate)
		assert.Equal(t, "0.02", settings.lastPatch.TradeFeeRate.String())
		assert.Nil(t, settings.lastPatch.ConversionRate)
	})

	t.Run("students cannot", func(t *testing.T) {
		h := &handlers.Handler{Settings: &stubSettingsController{}}
		rec := httptest.NewRecorder()
		h.UpdateMarketSettings(rec, authedRequest(http.MethodPatch, "/api/settings",
			`{"tradeFeeRate":"0.5"}`, studentClaims()))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("validation errors map to 422", func(t *testing.T) {
		h := &handlers.Handler{Settings: &stubSettingsController{
			err: utils.UnprocessableEntity("trade fee rate must be in [0, 1)"),
		}}
		rec := httptest.NewRecorder()
		h.UpdateMarketSettings(rec, authedRequest(http.MethodPatch, "/api/settings",
			`{"tradeFeeRate":"1.5"}`, teacherClaims()))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGlobalSettingsHandlersRequireAdmin(t *testing.T) {
	h := &handlers.Handler{Settings: &stubSettingsController{}}

	rec := httptest.NewRecorder()
	h.UpdateGlobalSettings(rec, authedRequest(http.MethodPatch, "/api/settings/global",
		`{"quoteProxyUrl":"https://quotes.example.com"}`, teacherClaims()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
