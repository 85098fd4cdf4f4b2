package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"culturemap/internal/apperror"
	"culturemap/internal/auth"
	"culturemap/internal/metrics"
	"culturemap/internal/models"
	"culturemap/internal/policy"
	"culturemap/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength    = 200
	maxAddressLength = 255
	DefaultPerPage   = 30
	MaxPerPage       = 100
)

// SubmitInput is the payload of a new place or event.
type SubmitInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Category    string     `json:"category"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// ListQuery filters a content listing. State only narrows the result; it
// never widens what the caller may see.
type ListQuery struct {
	Kind     models.Kind
	Category string
	State    models.ModerationState
	Page     int
	PerPage  int
}

type ContentPage struct {
	Items      []models.ContentItem `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"perPage"`
	TotalPages int                  `json:"totalPages"`
}

// ModerationService owns places and events and their Pending/Approved/Rejected
// lifecycle. Every transition is a single conditional UPDATE.
type ModerationService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewModerationService(conn *gorm.DB, log *zap.Logger) *ModerationService {
	return &ModerationService{db: conn, log: log}
}

// Submit stores a new item in Pending for any authenticated caller.
func (s *ModerationService) Submit(ctx context.Context, p *auth.Principal, kind models.Kind, in SubmitInput) (*models.ContentItem, error) {
	if err := policy.Require(p, policy.CreateContent, nil); err != nil {
		return nil, err
	}
	item, err := buildItem(kind, in)
	if err != nil {
		return nil, err
	}
	item.OwnerID = p.ID
	item.State = models.StatePending
	item.Published = false

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	s.log.Info("content submitted",
		zap.String("kind", string(kind)),
		zap.Uint("id", item.ID),
		zap.Uint("owner", p.ID))
	return item, nil
}

func buildItem(kind models.Kind, in SubmitInput) (*models.ContentItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, apperror.Invalid("name", "must be at most 200 characters")
	}
	address := strings.TrimSpace(in.Address)
	if utf8.RuneCountInString(address) > maxAddressLength {
		return nil, apperror.Invalid("address", "must be at most 255 characters")
	}

	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, apperror.Invalid("coordinates", "lat and lng must be given together")
	}
	if in.Lat != nil {
		if math.IsNaN(*in.Lat) || *in.Lat < -90 || *in.Lat > 90 {
			return nil, apperror.Invalid("lat", "must be between -90 and 90")
		}
		if math.IsNaN(*in.Lng) || *in.Lng < -180 || *in.Lng > 180 {
			return nil, apperror.Invalid("lng", "must be between -180 and 180")
		}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}
	if !models.ValidCategory(kind, category) {
		return nil, apperror.Invalid("category", "unknown category for "+string(kind))
	}

	item := &models.ContentItem{
		Kind:        kind,
		Name:        name,
		Description: in.Description,
		Address:     address,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Category:    category,
	}

	if kind == models.KindEvent {
		if in.StartsAt == nil {
			return nil, apperror.Invalid("startsAt", "is required for events")
		}
		if in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
			return nil, apperror.Invalid("endsAt", "must not be before startsAt")
		}
		item.StartsAt = in.StartsAt
		item.EndsAt = in.EndsAt
	}
	return item, nil
}

// Approve moves an item to Approved and publishes it. Approving an item that
// is already Approved changes nothing.
func (s *ModerationService) Approve(ctx context.Context, p *auth.Principal, kind models.Kind, id uint) (*models.ContentItem, error) {
	if err := policy.Require(p, policy.ApproveContent, nil); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND kind = ? AND state <> ?", id, kind, models.StateApproved).
		Updates(map[string]interface{}{
			"state":            models.StateApproved,
			"published":        true,
			"rejection_reason": nil,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		s.transitioned(p, kind, id, models.StateApproved)
	}
	return s.load(ctx, kind, id)
}

// Reject moves an item to Rejected with a mandatory reason and unpublishes it.
func (s *ModerationService) Reject(ctx context.Context, p *auth.Principal, kind models.Kind, id uint, reason string) (*models.ContentItem, error) {
	if err := policy.Require(p, policy.RejectContent, nil); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Invalid("reason", "is required")
	}

	res := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND kind = ?", id, kind).
		Updates(map[string]interface{}{
			"state":            models.StateRejected,
			"published":        false,
			"rejection_reason": reason,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrNotFound
	}
	s.transitioned(p, kind, id, models.StateRejected)
	return s.load(ctx, kind, id)
}

// SetPublished toggles visibility of an Approved item.
func (s *ModerationService) SetPublished(ctx context.Context, p *auth.Principal, kind models.Kind, id uint, published bool) (*models.ContentItem, error) {
	if err := policy.Require(p, policy.ApproveContent, nil); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND kind = ? AND state = ?", id, kind, models.StateApproved).
		Updates(map[string]interface{}{
			"published":  published,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.load(ctx, kind, id); err != nil {
			return nil, err
		}
		return nil, apperror.Invalid("published", "only approved items can be published or unpublished")
	}
	return s.load(ctx, kind, id)
}

// Delete removes an item. Owners may delete their own submissions in any
// state; anyone else needs approve-content. Interactions recorded against the
// item live in another store and are left in place.
func (s *ModerationService) Delete(ctx context.Context, p *auth.Principal, kind models.Kind, id uint) error {
	if p == nil {
		return apperror.ErrUnauthenticated
	}
	item, err := s.load(ctx, kind, id)
	if err != nil {
		return err
	}
	if item.OwnerID != p.ID {
		if !policy.Authorize(p, policy.ViewApproved, item) {
			return apperror.ErrNotFound
		}
		if err := policy.Require(p, policy.ApproveContent, item); err != nil {
			return err
		}
	}

	res := s.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).Delete(&models.ContentItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	metrics.ModerationTransitions.WithLabelValues(string(kind), "deleted").Inc()
	s.log.Info("content deleted",
		zap.String("kind", string(kind)),
		zap.Uint("id", id),
		zap.Uint("by", p.ID))
	return nil
}

// visibleTo constrains a query to what p may see. It is applied when the
// query is built so counts and pages agree with the rows returned.
func visibleTo(p *auth.Principal) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if policy.Can(p, policy.ViewPending) {
			return tx
		}
		return tx.Where("state = ? AND published = ?", models.StateApproved, true)
	}
}

// List returns one page of items of a kind, role-filtered.
func (s *ModerationService) List(ctx context.Context, p *auth.Principal, q ListQuery) (*ContentPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	query := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("kind = ?", q.Kind).
		Scopes(visibleTo(p))
	if q.Category != "" {
		if !models.ValidCategory(q.Kind, q.Category) {
			return nil, apperror.Invalid("category", "unknown category for "+string(q.Kind))
		}
		query = query.Where("category = ?", q.Category)
	}
	if q.State != "" {
		switch q.State {
		case models.StatePending, models.StateApproved, models.StateRejected:
		default:
			return nil, apperror.Invalid("state", "unknown moderation state")
		}
		query = query.Where("state = ?", q.State)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	order := "created_at DESC, id DESC"
	if q.Kind == models.KindEvent {
		order = "starts_at ASC, id ASC"
	}

	items := make([]models.ContentItem, 0)
	if err := query.Session(&gorm.Session{}).
		Order(order).
		Limit(q.PerPage).
		Offset((q.Page - 1) * q.PerPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(q.PerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	return &ContentPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
	}, nil
}

// Get returns one item. Items the caller may not see are reported as
// apperror.ErrNotFound, never as forbidden.
func (s *ModerationService) Get(ctx context.Context, p *auth.Principal, kind models.Kind, id uint) (*models.ContentItem, error) {
	item, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(p, policy.ViewApproved, item) {
		return nil, apperror.ErrNotFound
	}
	item.DescriptionHTML = utils.RenderMarkdown(item.Description)
	return item, nil
}

func (s *ModerationService) load(ctx context.Context, kind models.Kind, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ModerationService) transitioned(p *auth.Principal, kind models.Kind, id uint, to models.ModerationState) {
	metrics.ModerationTransitions.WithLabelValues(string(kind), string(to)).Inc()
	s.log.Info("content moderated",
		zap.String("kind", string(kind)),
		zap.Uint("id", id),
		zap.String("state", string(to)),
		zap.Uint("moderator", p.ID))
}
