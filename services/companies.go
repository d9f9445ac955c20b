package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d3ming/ycx25-voter/models"
)

// CompanyView ist die API-Darstellung einer Firma mit dekodierten Listen.
type CompanyView struct {
	models.Company
	Founders []models.Founder `json:"founders"`
	Tags     []string         `json:"tags"`
}

// TagResult beschreibt den Zustand nach AddTag.
type TagResult struct {
	Tags  []string `json:"tags"`
	Index int      `json:"index"`
	Added bool     `json:"added"`
}

// Stats fasst den Bewertungsstand zusammen.
type Stats struct {
	Total      int                 `json:"total"`
	ByTier     map[models.Tier]int `json:"by_tier"`
	Ranked     int                 `json:"ranked"`
	Tagged     int                 `json:"tagged"`
	BestRanked string              `json:"best_ranked,omitempty"`
}

// CompanyService kapselt Lesen, Bewerten, Einstufen und Taggen der Firmen.
type CompanyService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewCompanyService erstellt eine neue Instanz des CompanyService.
func NewCompanyService(db *gorm.DB, logger *zap.Logger) *CompanyService {
	return &CompanyService{DB: db, Logger: logger}
}

func (s *CompanyService) view(c models.Company) CompanyView {
	founders, err := c.FounderList()
	if err != nil {
		s.Logger.Warn("Malformed founders payload, treating as empty", zap.Uint("id", c.ID), zap.Error(err))
	}
	return CompanyView{Company: c, Founders: founders, Tags: s.tags(&c)}
}

func (s *CompanyService) tags(c *models.Company) []string {
	tags, err := c.TagList()
	if err != nil {
		s.Logger.Warn("Malformed tags payload, treating as empty", zap.Uint("id", c.ID), zap.Error(err))
	}
	return tags
}

func (s *CompanyService) all(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// ListSorted liefert alle Firmen sortiert nach (Stufe, effektiver Rang).
func (s *CompanyService) ListSorted(ctx context.Context) ([]CompanyView, error) {
	companies, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	SortCompanies(companies)
	views := make([]CompanyView, 0, len(companies))
	for _, c := range companies {
		views = append(views, s.view(c))
	}
	return views, nil
}

// Get liefert eine einzelne Firma.
func (s *CompanyService) Get(ctx context.Context, id uint) (CompanyView, error) {
	var c models.Company
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return CompanyView{}, notFound(err, id)
	}
	return s.view(c), nil
}

func notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: company %d", ErrNotFound, id)
	}
	return err
}

// mutate führt Lesen-Ändern-Schreiben für eine Firma in einer Transaktion aus.
func (s *CompanyService) mutate(ctx context.Context, id uint, op string, fn func(tx *gorm.DB, c *models.Company) error) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Company
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err, id)
		}
		return fn(tx, &c)
	})
	if err != nil {
		return err
	}
	companyUpdatesCounter.WithLabelValues(op).Inc()
	return nil
}

func (s *CompanyService) updateRank(ctx context.Context, id uint, op string, next func(int) int) (int, error) {
	var rank int
	err := s.mutate(ctx, id, op, func(tx *gorm.DB, c *models.Company) error {
		rank = next(c.Rank)
		return tx.Model(c).Update("rank", rank).Error
	})
	if err != nil {
		return 0, err
	}
	s.Logger.Info("Company rank updated", zap.Uint("id", id), zap.String("operation", op), zap.Int("rank", rank))
	return rank, nil
}

// SetRank überschreibt den Rang; Werte unter 1 werden auf 1 gesetzt.
func (s *CompanyService) SetRank(ctx context.Context, id uint, value int) (int, error) {
	return s.updateRank(ctx, id, "set_rank", func(int) int { return ClampRank(value) })
}

// IncrementRank verschiebt um eine Position nach hinten.
func (s *CompanyService) IncrementRank(ctx context.Context, id uint) (int, error) {
	return s.updateRank(ctx, id, "increment_rank", NextRank)
}

// DecrementRank verschiebt um eine Position nach vorne.
func (s *CompanyService) DecrementRank(ctx context.Context, id uint) (int, error) {
	return s.updateRank(ctx, id, "decrement_rank", PrevRank)
}

// SetTier setzt die Stufe. Ungültige Werte werden vor dem Lookup abgelehnt.
func (s *CompanyService) SetTier(ctx context.Context, id uint, tier string) (models.Tier, error) {
	t, err := models.ParseTier(tier)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	err = s.mutate(ctx, id, "set_tier", func(tx *gorm.DB, c *models.Company) error {
		return tx.Model(c).Update("tier", string(t)).Error
	})
	if err != nil {
		return "", err
	}
	s.Logger.Info("Company tier updated", zap.Uint("id", id), zap.String("tier", string(t)))
	return t, nil
}

// AddTag fügt einen bereinigten Tag an. Bereits vorhandene Tags sind ein erfolgreicher No-Op.
func (s *CompanyService) AddTag(ctx context.Context, id uint, text string) (TagResult, error) {
	tag := SanitizeTag(text)
	if tag == "" {
		return TagResult{}, fmt.Errorf("%w: tag is empty after sanitizing", ErrInvalidArgument)
	}

	var res TagResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Company
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err, id)
		}
		tags := s.tags(&c)
		if i := indexOf(tags, tag); i >= 0 {
			res = TagResult{Tags: tags, Index: i, Added: false}
			return nil
		}
		tags = append(tags, tag)
		c.SetTags(tags)
		if err := tx.Model(&c).Update("tags", c.Tags).Error; err != nil {
			return err
		}
		res = TagResult{Tags: tags, Index: len(tags) - 1, Added: true}
		return nil
	})
	if err != nil {
		return TagResult{}, err
	}
	if res.Added {
		companyUpdatesCounter.WithLabelValues("add_tag").Inc()
		s.Logger.Info("Company tag added", zap.Uint("id", id), zap.String("tag", tag))
	}
	return res, nil
}

// RemoveTag entfernt den Tag an Position index und liefert ihn zurück.
func (s *CompanyService) RemoveTag(ctx context.Context, id uint, index int) (string, []string, error) {
	var removed string
	var tags []string
	err := s.mutate(ctx, id, "remove_tag", func(tx *gorm.DB, c *models.Company) error {
		tags = s.tags(c)
		if index < 0 || index >= len(tags) {
			return fmt.Errorf("%w: tag index %d out of range (0..%d)", ErrInvalidArgument, index, len(tags)-1)
		}
		removed = tags[index]
		tags = append(tags[:index:index], tags[index+1:]...)
		c.SetTags(tags)
		return tx.Model(c).Update("tags", c.Tags).Error
	})
	if err != nil {
		return "", nil, err
	}
	s.Logger.Info("Company tag removed", zap.Uint("id", id), zap.String("tag", removed))
	return removed, tags, nil
}

// Search filtert nach Freitext (Name, Gründer) oder Tags; ohne Filter kommen alle Firmen zurück.
func (s *CompanyService) Search(ctx context.Context, filter SearchFilter) ([]CompanyView, error) {
	views, err := s.ListSorted(ctx)
	if err != nil {
		return nil, err
	}
	if filter.empty() {
		return views, nil
	}
	m := newMatcher(filter)
	out := make([]CompanyView, 0, len(views))
	for _, v := range views {
		if m.Match(v.Name, v.Founders, v.Tags) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Stats zählt Firmen pro Stufe sowie bewertete und getaggte Firmen.
func (s *CompanyService) Stats(ctx context.Context) (Stats, error) {
	views, err := s.ListSorted(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(views), ByTier: map[models.Tier]int{}}
	best := 0
	for _, v := range views {
		st.ByTier[v.Tier]++
		if len(v.Tags) > 0 {
			st.Tagged++
		}
		if v.Rank > 0 {
			st.Ranked++
			if best == 0 || v.Rank < best {
				best = v.Rank
				st.BestRanked = v.Name
			}
		}
	}
	return st, nil
}
