package userdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shonar/kv"
	"shonar/models"
)

func TestRecentlyViewedCapAndOrder(t *testing.T) {
	prefs := NewPrefs(kv.NewMemory())
	ctx := context.Background()

	a := models.Product{ProductID: "a", Name: "Kurti", Price: 550}
	b := models.Product{ProductID: "b", Name: "Vase", Price: 900}
	c := models.Product{ProductID: "c", Name: "Plate", Price: 320}

	prefs.MarkViewed(ctx, "s1", a)
	prefs.MarkViewed(ctx, "s1", b)
	prefs.MarkViewed(ctx, "s1", c)

	shelf := prefs.RecentlyViewed(ctx, "s1")
	require.Len(t, shelf, 2) // capped at two
	assert.Equal(t, "c", shelf[0].ProductID)
	assert.Equal(t, "b", shelf[1].ProductID)

	// re-viewing moves to front without duplicating
	prefs.MarkViewed(ctx, "s1", b)
	shelf = prefs.RecentlyViewed(ctx, "s1")
	require.Len(t, shelf, 2)
	assert.Equal(t, "b", shelf[0].ProductID)
	assert.Equal(t, "c", shelf[1].ProductID)
}

func TestRecentlyViewedCorruptFallsBack(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "recent:s1", "{broken"))

	prefs := NewPrefs(mem)
	assert.Empty(t, prefs.RecentlyViewed(ctx, "s1"))
}

func TestLanguageAndConsentDefaults(t *testing.T) {
	prefs := NewPrefs(kv.NewMemory())
	ctx := context.Background()

	assert.Equal(t, "bn", prefs.Language(ctx, "s1"))
	assert.Equal(t, "", prefs.Consent(ctx, "s1"))

	assert.True(t, prefs.SetLanguage(ctx, "s1", "en"))
	assert.Equal(t, "en", prefs.Language(ctx, "s1"))
	assert.False(t, prefs.SetLanguage(ctx, "s1", "fr"))

	assert.True(t, prefs.SetConsent(ctx, "s1", "accepted"))
	assert.Equal(t, "accepted", prefs.Consent(ctx, "s1"))
	assert.False(t, prefs.SetConsent(ctx, "s1", "maybe"))
}
