package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type categoryRuleRepo struct {
	db *sqlx.DB
}

// NewCategoryRuleRepo creates a new PostgreSQL-backed CategoryRuleRepository.
func NewCategoryRuleRepo(db *sqlx.DB) port.CategoryRuleRepository {
	return &categoryRuleRepo{db: db}
}

func (r *categoryRuleRepo) Create(ctx context.Context, rule *domain.CategoryRule) error {
	rule.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_rules (id, business_id, keyword, category, created_by, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)`,
		rule.ID, rule.BusinessID, rule.Keyword, rule.Category,
		rule.CreatedBy, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("categoryRuleRepo.Create: %w", err)
	}
	return nil
}

func (r *categoryRuleRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.CategoryRule, error) {
	var rules []domain.CategoryRule
	err := r.db.SelectContext(ctx, &rules, `
		SELECT * FROM category_rules
		WHERE business_id = $1
		ORDER BY created_at`, businessID)
	if err != nil {
		return nil, fmt.Errorf("categoryRuleRepo.ListByBusiness: %w", err)
	}
	return rules, nil
}

func (r *categoryRuleRepo) Delete(ctx context.Context, businessID, ruleID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM category_rules WHERE id = $1 AND business_id = $2",
		ruleID, businessID)
	if err != nil {
		return fmt.Errorf("categoryRuleRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
