package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllCategoriesHaveSubreddits(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, Valid(c), "category %q should be valid", c)
		assert.Len(t, Subreddits(c, false), 3, "category %q primary tier", c)
	}
}

func TestKeywordsDeduplicated(t *testing.T) {
	for _, c := range AllCategories() {
		seen := map[string]bool{}
		for _, kw := range Keywords(c) {
			assert.False(t, seen[kw], "duplicate keyword %q in %q", kw, c)
			seen[kw] = true
		}
	}
	// Finance lists "investment" and "fintech" twice in its source data.
	kws := Keywords(Finance)
	assert.Len(t, kws, 11)
}

func TestKeywordsReturnsCopy(t *testing.T) {
	kws := Keywords(SaaSCompanies)
	require.NotEmpty(t, kws)
	kws[0] = "mutated"
	assert.Equal(t, "saas", Keywords(SaaSCompanies)[0])
}

func TestJobsAndHiringHasNoKeywords(t *testing.T) {
	assert.Nil(t, Keywords(JobsAndHiring))
	assert.True(t, Valid(JobsAndHiring))
	assert.Empty(t, Rivals(JobsAndHiring, 3))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBusiness, KindOf(SaaSCompanies))
	assert.Equal(t, KindIndustry, KindOf(SaaSTech))
	assert.Equal(t, "industry", KindIndustry.String())
}

func TestRivals(t *testing.T) {
	tests := []struct {
		cat  Category
		want []Category
	}{
		{Gyms, []Category{SaaSCompanies, EcommerceStores, MarketingAgency}},
		{SaaSCompanies, []Category{Gyms, EcommerceStores, MarketingAgency}},
		{Consultants, []Category{Gyms, SaaSCompanies, EcommerceStores}},
		{Fitness, []Category{SaaSTech, Ecommerce, MarketingAds}},
		{Finance, []Category{Fitness, SaaSTech, Ecommerce}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rivals(tt.cat, 3), "rivals of %q", tt.cat)
	}
}

func TestSubredditsWide(t *testing.T) {
	assert.Equal(t, []string{"SaaS", "startups", "Entrepreneur", "IndieDev"}, Subreddits(SaaSCompanies, true))
	// backup duplicates a primary entry
	assert.Equal(t, []string{"CoffeeShopOwners", "Coffee", "Barista"}, Subreddits(CoffeeShops, true))
	assert.Nil(t, Subreddits(Category("Unknown"), true))
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		input string
		want  Category
		err   bool
	}{
		{"saas", SaaSCompanies, false},
		{"SAAS", SaaSCompanies, false},
		{"  fintech ", Finance, false},
		{"SaaS Companies", SaaSCompanies, false},
		{"saas / tech", SaaSTech, false},
		{"nope", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveAlias(tt.input)
		if tt.err {
			assert.Error(t, err, "ResolveAlias(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ResolveAlias(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestAliasesResolveToValidCategories(t *testing.T) {
	for alias, cat := range Aliases {
		assert.True(t, Valid(cat), "alias %q points to unknown category", alias)
	}
}
