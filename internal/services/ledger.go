package services

import (
	"context"
	"errors"
	"fmt"
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
	"gorm.io/gorm/clause"
)

// maxWriteAttempts bounds the insert/delete (or insert/update) round when a
// concurrent writer keeps winning the race for the same (user, target).
const maxWriteAttempts = 3

type Outcome string

const (
	Created Outcome = "created"
	Updated Outcome = "updated"
	Deleted Outcome = "deleted"
)

type CommentPage struct {
	Items      []models.Comment `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	TotalPages int              `json:"totalPages"`
}

// LedgerService records favorites, votes and comments against a target.
// Targets are not checked against the content store; interaction rows that
// outlive their place or event are tolerated.
type LedgerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLedgerService(conn *gorm.DB, log *zap.Logger) *LedgerService {
	return &LedgerService{db: conn, log: log}
}

func targetScope(userID uint, t models.Target) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, t.Kind, t.ID)
	}
}

// ToggleFavorite creates the favorite if absent and deletes it otherwise.
// The insert is guarded by the unique (user, target) index: a conflict means
// the row exists, which sends the call down the delete branch.
func (s *LedgerService) ToggleFavorite(ctx context.Context, p *auth.Principal, t models.Target) (Outcome, error) {
	if err := policy.Require(p, policy.Favorite, nil); err != nil {
		return "", err
	}
	tx := s.db.WithContext(ctx)

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		fav := models.Favorite{UserID: p.ID, TargetKind: t.Kind, TargetID: t.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav)
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected == 1 {
			s.recorded("favorite", Created, p, t)
			return Created, nil
		}

		res = tx.Scopes(targetScope(p.ID, t)).Delete(&models.Favorite{})
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected == 1 {
			s.recorded("favorite", Deleted, p, t)
			return Deleted, nil
		}
		// Someone deleted it between our insert and delete; start over.
	}
	return "", fmt.Errorf("toggle favorite %s: lost %d races", t, maxWriteAttempts)
}

// UpsertVote sets the caller's star rating for t, creating the row on the
// first vote and replacing value and updatedAt afterwards.
func (s *LedgerService) UpsertVote(ctx context.Context, p *auth.Principal, t models.Target, value int) (Outcome, *models.Vote, error) {
	if err := policy.Require(p, policy.Vote, nil); err != nil {
		return "", nil, err
	}
	if value < models.MinVote || value > models.MaxVote {
		return "", nil, apperror.Invalid("value", fmt.Sprintf("must be between %d and %d", models.MinVote, models.MaxVote))
	}
	tx := s.db.WithContext(ctx)

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		vote := models.Vote{UserID: p.ID, TargetKind: t.Kind, TargetID: t.ID, Value: value}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return "", nil, res.Error
		}
		if res.RowsAffected == 1 {
			s.recorded("vote", Created, p, t)
			return Created, &vote, nil
		}

		res = tx.Model(&models.Vote{}).Scopes(targetScope(p.ID, t)).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()})
		if res.Error != nil {
			return "", nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}

		var stored models.Vote
		err := tx.Scopes(targetScope(p.ID, t)).First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		s.recorded("vote", Updated, p, t)
		return Updated, &stored, nil
	}
	return "", nil, fmt.Errorf("upsert vote %s: lost %d races", t, maxWriteAttempts)
}

// AddComment appends a comment. Markup is stripped before the blank and
// length checks.
func (s *LedgerService) AddComment(ctx context.Context, p *auth.Principal, t models.Target, text string) (*models.Comment, error) {
	if err := policy.Require(p, policy.Comment, nil); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(utils.StripMarkup(text))
	if text == "" {
		return nil, apperror.Invalid("text", "is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, apperror.Invalid("text", fmt.Sprintf("must be at most %d characters", models.MaxCommentLength))
	}

	comment := models.Comment{
		UserID:     p.ID,
		AuthorName: p.DisplayName,
		TargetKind: t.Kind,
		TargetID:   t.ID,
		Text:       text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	s.recorded("comment", Created, p, t)
	return &comment, nil
}

// ListComments is public and returns newest first.
func (s *LedgerService) ListComments(ctx context.Context, t models.Target, page, perPage int) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("target_kind = ? AND target_id = ?", t.Kind, t.ID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]models.Comment, 0)
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	return &CommentPage{Items: items, Total: total, Page: page, PerPage: perPage, TotalPages: totalPages}, nil
}

// ListFavorites returns the caller's own favorites, newest first.
func (s *LedgerService) ListFavorites(ctx context.Context, p *auth.Principal) ([]models.Favorite, error) {
	if err := policy.Require(p, policy.Favorite, nil); err != nil {
		return nil, err
	}
	favs := make([]models.Favorite, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", p.ID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	return favs, err
}

// Summarize aggregates the votes of t at read time. Mean stays nil when
// there are no votes.
func (s *LedgerService) Summarize(ctx context.Context, t models.Target) (models.VoteSummary, error) {
	var row struct {
		Mean  *float64
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Select("AVG(CAST(value AS REAL)) AS mean, COUNT(*) AS count").
		Where("target_kind = ? AND target_id = ?", t.Kind, t.ID).
		Scan(&row).Error
	if err != nil {
		return models.VoteSummary{}, err
	}
	if row.Count == 0 {
		return models.VoteSummary{Mean: nil, Count: 0}, nil
	}
	return models.VoteSummary{Mean: row.Mean, Count: row.Count}, nil
}

func (s *LedgerService) recorded(kind string, outcome Outcome, p *auth.Principal, t models.Target) {
	metrics.Interactions.WithLabelValues(kind, string(outcome)).Inc()
	s.log.Debug("interaction recorded",
		zap.String("kind", kind),
		zap.String("outcome", string(outcome)),
		zap.Uint("user", p.ID),
		zap.Stringer("target", t))
}
