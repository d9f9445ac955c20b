package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTierIndex(t *testing.T) {
	assert.Equal(t, 0, TierA.Index())
	assert.Equal(t, 1, TierB.Index())
	assert.Equal(t, 2, TierC.Index())
	assert.Equal(t, 3, TierD.Index())
	assert.Equal(t, 3, Tier("Z").Index())
	assert.Equal(t, 3, Tier("").Index())
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier(" B ")
	require.NoError(t, err)
	assert.Equal(t, TierB, tier)

	for _, bad := range []string{"E", "a", "", "AB"} {
		_, err := ParseTier(bad)
		assert.Error(t, err, bad)
	}
}

func TestTagListRecoversFromMalformedPayload(t *testing.T) {
	c := Company{Tags: datatypes.JSON(`{"not":"a list"`)}
	tags, err := c.TagList()
	assert.Error(t, err)
	assert.Empty(t, tags)
	assert.NotNil(t, tags)
}

func TestTagsRoundTrip(t *testing.T) {
	var c Company
	tags, err := c.TagList()
	require.NoError(t, err)
	assert.Empty(t, tags)

	c.SetTags([]string{"fintech", "b2b"})
	tags, err = c.TagList()
	require.NoError(t, err)
	assert.Equal(t, []string{"fintech", "b2b"}, tags)

	c.SetTags(nil)
	assert.Equal(t, `[]`, string(c.Tags))
}

func TestFounderList(t *testing.T) {
	var c Company
	c.SetFounders([]Founder{{Name: "Ada Lovelace", LinkedIn: "https://linkedin.com/in/ada"}})
	founders, err := c.FounderList()
	require.NoError(t, err)
	require.Len(t, founders, 1)
	assert.Equal(t, "Ada Lovelace", founders[0].Name)

	c.Founders = datatypes.JSON(`nope`)
	founders, err = c.FounderList()
	assert.Error(t, err)
	assert.Empty(t, founders)
}
