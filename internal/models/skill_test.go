package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCreatableSkills(t *testing.T) {
	existing := map[string]bool{
		"guitar":      true,
		"photography": true,
	}

	candidates := []SkillInput{
		{SkillName: "Guitar"},          // уже есть (другой регистр)
		{SkillName: "  Cooking  "},     // новый, с пробелами
		{SkillName: "other"},           // плейсхолдер
		{SkillName: "Other"},           // плейсхолдер в другом регистре
		{SkillName: ""},                // без имени
		{SkillName: "cooking"},         // дубликат внутри пакета
		{SkillName: "Graphic Design"},  // новый
	}

	result := FilterCreatableSkills(candidates, existing)
	require.Len(t, result, 2)
	assert.Equal(t, "Cooking", result[0].SkillName)
	assert.Equal(t, "Graphic Design", result[1].SkillName)
}

func TestFilterCreatableSkills_AllDuplicates(t *testing.T) {
	existing := map[string]bool{"guitar": true}

	result := FilterCreatableSkills([]SkillInput{
		{SkillName: "GUITAR"},
		{SkillName: "other"},
	}, existing)

	assert.Empty(t, result)
}

func TestCheckImageLimit(t *testing.T) {
	assert.NoError(t, CheckImageLimit(0, MaxImagesOnCreate, MaxImagesOnCreate))
	assert.Error(t, CheckImageLimit(0, MaxImagesOnCreate+1, MaxImagesOnCreate))
	assert.NoError(t, CheckImageLimit(3, 2, MaxImagesOnAppend))
	assert.Error(t, CheckImageLimit(4, 2, MaxImagesOnAppend))
	assert.NoError(t, CheckImageLimit(5, 1, MaxUserImages))
	assert.Error(t, CheckImageLimit(6, 1, MaxUserImages))
}

func TestIsValidListingStatus(t *testing.T) {
	for _, s := range []string{ListingStatusActive, ListingStatusInactive, ListingStatusPaused, ListingStatusCompleted} {
		assert.True(t, IsValidListingStatus(s))
	}
	assert.False(t, IsValidListingStatus("draft"))
	assert.False(t, IsValidListingStatus(""))
}

func TestIsValidRating(t *testing.T) {
	assert.False(t, IsValidRating(0))
	assert.True(t, IsValidRating(1))
	assert.True(t, IsValidRating(5))
	assert.False(t, IsValidRating(6))
	assert.False(t, IsValidRating(-1))
}
