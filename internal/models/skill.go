package models

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderSkillName — служебное значение "other", которое клиент передает
// вместо ID навыка, когда хочет указать произвольное название
const PlaceholderSkillName = "other"

// Типы связи пользователя с навыком
const (
	SkillTypeOffering = "offering"
	SkillTypeDesiring = "desiring"
)

// Skill представляет навык в общем каталоге
type Skill struct {
	ID          uuid.UUID `json:"id"`
	SkillName   string    `json:"skill_name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
}

// UserSkill представляет связь пользователя с навыком (предлагает/хочет изучить)
type UserSkill struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	SkillID          uuid.UUID `json:"skill_id"`
	SkillName        string    `json:"skill_name,omitempty"`
	SkillType        string    `json:"skill_type"`
	ProficiencyLevel string    `json:"proficiency_level,omitempty"`
	Details          string    `json:"details,omitempty"`
}

// SkillInput представляет навык в запросе пакетного создания
type SkillInput struct {
	SkillName        string `json:"skill_name"`
	Category         string `json:"category"`
	Description      string `json:"description"`
	ProficiencyLevel string `json:"proficiency_level"`
	Details          string `json:"details"`
}

// FilterCreatableSkills отбирает из кандидатов те навыки, которые действительно
// нужно создать: пропускает пустые имена, плейсхолдер "other" и имена, уже
// существующие в каталоге (сравнение без учета регистра). Имена обрезаются по
// пробелам, дубликаты внутри самого пакета тоже схлопываются.
func FilterCreatableSkills(candidates []SkillInput, existingLower map[string]bool) []SkillInput {
	var result []SkillInput
	seen := make(map[string]bool)

	for _, item := range candidates {
		name := strings.TrimSpace(item.SkillName)
		if name == "" {
			continue
		}

		lower := strings.ToLower(name)
		if lower == PlaceholderSkillName {
			// Плейсхолдер "Other" игнорируем
			continue
		}

		if existingLower[lower] || seen[lower] {
			continue
		}

		seen[lower] = true
		item.SkillName = name
		result = append(result, item)
	}

	return result
}
