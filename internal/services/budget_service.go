package services

import (
	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/validator"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	store *database.Store
	audit AuditServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(store *database.Store, audit AuditServicer) BudgetServicer {
	return &budgetService{store: store, audit: audit}
}

// AddBudget creates an active budget for the session's user.
func (s *budgetService) AddBudget(sess *Session, in BudgetInput) (*models.Budget, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	period, err := models.ParseBudgetPeriod(in.Period)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != "" {
		if _, ok := s.store.GetCategoryByID(in.CategoryID); !ok {
			return nil, apperrors.ErrCategoryNotFound
		}
	}
	threshold := models.DefaultThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}

	budget, err := models.NewBudget(user.ID, in.CategoryID, period, in.Limit, threshold)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveBudget(budget); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "create", "budget", budget.ID, map[string]any{
		"period": string(period),
		"limit":  budget.Limit.String(),
	})
	return budget, nil
}

// ListBudgets returns the session user's budgets, active or not.
func (s *budgetService) ListBudgets(sess *Session) ([]*models.Budget, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	return s.store.GetBudgetsByUser(user.ID), nil
}

// UpdateBudget changes the limit and/or threshold.
func (s *budgetService) UpdateBudget(sess *Session, budgetID string, upd BudgetUpdate) (*models.Budget, error) {
	user, budget, err := s.ownedBudget(sess, budgetID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Limit != nil {
		if err := budget.UpdateLimit(*upd.Limit); err != nil {
			return nil, err
		}
		changes["limit"] = upd.Limit.String()
	}
	if upd.Threshold != nil {
		if err := budget.UpdateThreshold(*upd.Threshold); err != nil {
			return nil, err
		}
		changes["threshold"] = *upd.Threshold
	}

	if err := s.store.SaveBudget(budget); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "update", "budget", budget.ID, changes)
	return budget, nil
}

// SetBudgetActive activates or deactivates a budget.
func (s *budgetService) SetBudgetActive(sess *Session, budgetID string, active bool) (*models.Budget, error) {
	user, budget, err := s.ownedBudget(sess, budgetID)
	if err != nil {
		return nil, err
	}
	action := "activate"
	if active {
		budget.Activate()
	} else {
		budget.Deactivate()
		action = "deactivate"
	}
	if err := s.store.SaveBudget(budget); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, action, "budget", budget.ID, nil)
	return budget, nil
}

func (s *budgetService) DeleteBudget(sess *Session, budgetID string) error {
	user, budget, err := s.ownedBudget(sess, budgetID)
	if err != nil {
		return err
	}
	if _, err := s.store.DeleteBudget(budget.ID); err != nil {
		return err
	}
	s.audit.Log(user.ID, "delete", "budget", budget.ID, nil)
	return nil
}

func (s *budgetService) ownedBudget(sess *Session, budgetID string) (*models.User, *models.Budget, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, nil, err
	}
	budget, ok := s.store.GetBudgetByID(budgetID)
	if !ok {
		return nil, nil, apperrors.ErrBudgetNotFound
	}
	if budget.UserID != user.ID {
		return nil, nil, apperrors.ErrForbidden
	}
	return user, budget, nil
}
