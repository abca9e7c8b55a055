package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

type SectionService struct {
	DB      *gorm.DB
	Toggles *toggle.Board
}

func NewSectionService(db *gorm.DB, board *toggle.Board) *SectionService {
	return &SectionService{DB: db, Toggles: board}
}

type SectionInput struct {
	Title         string `json:"title"`
	CustomMessage string `json:"custom_message"`
	DisplayOrder  int    `json:"display_order"`
}

// SectionState pairs a section with its visibility switch.
type SectionState struct {
	models.SpecialSection
	Visibility toggle.State `json:"visibility"`
}

// List returns sections by display order. Storefront callers pass
// onlyAvailable to hide switched-off sections.
func (s *SectionService) List(ctx context.Context, onlyAvailable bool) ([]models.SpecialSection, error) {
	query := s.DB.WithContext(ctx).Order("display_order ASC, id ASC")
	if onlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	var sections []models.SpecialSection
	if err := query.Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// AdminList returns every section with its switch state.
func (s *SectionService) AdminList(ctx context.Context) ([]SectionState, error) {
	sections, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]SectionState, 0, len(sections))
	for _, section := range sections {
		sw := s.Toggles.Switch(toggle.Key("section", section.SectionKey), section.IsAvailable, nil)
		section.IsAvailable = sw.Value()
		out = append(out, SectionState{SpecialSection: section, Visibility: sw.State()})
	}
	return out, nil
}

func (s *SectionService) get(ctx context.Context, key string) (models.SpecialSection, error) {
	var section models.SpecialSection
	if err := s.DB.WithContext(ctx).Where("section_key = ?", key).First(&section).Error; err != nil {
		return models.SpecialSection{}, notFound(err, "section")
	}
	return section, nil
}

func (s *SectionService) Update(ctx context.Context, key string, in SectionInput) (models.SpecialSection, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.SpecialSection{}, invalid("title", "Section title is required")
	}
	section, err := s.get(ctx, key)
	if err != nil {
		return models.SpecialSection{}, err
	}

	section.Title = strings.TrimSpace(in.Title)
	section.CustomMessage = strings.TrimSpace(in.CustomMessage)
	section.DisplayOrder = in.DisplayOrder
	if err := s.DB.WithContext(ctx).Model(&section).Updates(map[string]interface{}{
		"title":          section.Title,
		"custom_message": section.CustomMessage,
		"display_order":  section.DisplayOrder,
	}).Error; err != nil {
		return models.SpecialSection{}, err
	}
	return section, nil
}

// ToggleVisibility flips is_available of the section with rollback on failure.
func (s *SectionService) ToggleVisibility(ctx context.Context, key string) (toggle.State, error) {
	section, err := s.get(ctx, key)
	if err != nil {
		return toggle.State{}, err
	}

	sw := s.Toggles.Switch(toggle.Key("section", key), section.IsAvailable, nil)
	res := sw.Flip(ctx, func(ctx context.Context, v bool) error {
		return s.DB.WithContext(ctx).Model(&models.SpecialSection{ID: section.ID}).Update("is_available", v).Error
	})
	if res.Err != nil {
		if !errors.Is(res.Err, toggle.ErrSaving) {
			utils.LogError("toggle section visibility", res.Err, map[string]interface{}{"section": key})
		}
		return sw.State(), res.Err
	}
	utils.InfoLogger.Printf("Section %s visibility set to %t", key, res.Value)
	return sw.State(), nil
}
