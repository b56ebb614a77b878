package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
)

func TestNewBusiness_Defaults(t *testing.T) {
	b, err := NewBusiness(7, "  Joe's Auto Repair  ")
	require.NoError(t, err)

	assert.Equal(t, int64(7), b.OwnerID())
	assert.Equal(t, "Joe's Auto Repair", b.Name())
	assert.Equal(t, DefaultBrandColor, b.BrandColor())
	assert.True(t, b.NotifyOnFeedback())
	assert.Equal(t, SubscriptionPending, b.Subscription())
	assert.False(t, b.CreatedAt().IsZero())
}

func TestNewBusiness_RequiresName(t *testing.T) {
	_, err := NewBusiness(1, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBusiness_RenameKeepsSlug(t *testing.T) {
	b, err := NewBusiness(1, "Old Name")
	require.NoError(t, err)
	b = b.WithSlug("old-name")

	renamed, err := b.Rename("New Name")
	require.NoError(t, err)

	assert.Equal(t, "New Name", renamed.Name())
	assert.Equal(t, "old-name", renamed.Slug())
	assert.Equal(t, "Old Name", b.Name(), "original is unchanged")
}

func TestBusiness_WithBrandColor(t *testing.T) {
	b, _ := NewBusiness(1, "Shop")

	updated, err := b.WithBrandColor("#FF00aa")
	require.NoError(t, err)
	assert.Equal(t, "#ff00aa", updated.BrandColor())

	_, err = b.WithBrandColor("red")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBusiness_WithLogoURL(t *testing.T) {
	b, _ := NewBusiness(1, "Shop")

	updated, err := b.WithLogoURL("https://cdn.example.com/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", updated.LogoURL())

	cleared, err := updated.WithLogoURL("")
	require.NoError(t, err)
	assert.Equal(t, "", cleared.LogoURL())

	_, err = b.WithLogoURL("javascript:alert(1)")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBusiness_SubscriptionLifecycle(t *testing.T) {
	b, _ := NewBusiness(1, "Shop")

	active := b.Activate("cus_123")
	assert.Equal(t, SubscriptionActive, active.Subscription())
	assert.Equal(t, "cus_123", active.CustomerRef())

	kept := active.Activate("")
	assert.Equal(t, "cus_123", kept.CustomerRef())

	assert.Equal(t, SubscriptionCanceled, active.Cancel().Subscription())
}

func TestPlatformURLs(t *testing.T) {
	urls, err := NewPlatformURLs(map[Platform]string{
		PlatformGoogle: "https://g.page/r/abc",
		PlatformYelp:   "",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://g.page/r/abc", urls.Get(PlatformGoogle))
	assert.Len(t, urls.All(), 1)

	empty := ""
	yelp := "https://yelp.com/biz/shop"
	merged, err := urls.Merge(map[Platform]*string{PlatformGoogle: &empty, PlatformYelp: &yelp, PlatformFacebook: nil})
	require.NoError(t, err)
	assert.Equal(t, "", merged.Get(PlatformGoogle))
	assert.Equal(t, yelp, merged.Get(PlatformYelp))

	_, err = NewPlatformURLs(map[Platform]string{"myspace": "https://myspace.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewPlatformURLs(map[Platform]string{PlatformGoogle: "not a url"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" Nextdoor ")
	require.NoError(t, err)
	assert.Equal(t, PlatformNextdoor, p)
}

func TestSurvey(t *testing.T) {
	assert.False(t, NewSurvey("", " ", "").Completed())
	s := NewSurvey("auto repair", "100-500", "friend")
	assert.True(t, s.Completed())
	assert.Equal(t, "auto repair", s.Industry())
}
