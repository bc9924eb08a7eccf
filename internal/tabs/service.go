// Package tabs is the tab registry: named dining sessions with waiter and
// support call flags. Administrative changes are restricted to admins and
// managers; identity always comes from the authenticated principal.
package tabs

import (
	"context"
	"errors"
	"log"
	"strings"

	"tabserv/internal/apperr"
	"tabserv/internal/models"
	"tabserv/internal/policy"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Draft is the caller-supplied part of a new tab.
type Draft struct {
	Name           string
	Table          *int
	WaiterRequest  bool
	WaiterText     string
	SupportRequest bool
	SupportText    string
}

func internal(op string, err error) error {
	log.Printf("[TAB] [ERROR] %s: %v", op, err)
	return apperr.Wrap(op, err)
}

func mapStoreError(op, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTabNotFound):
		return apperr.New(apperr.KindNotFound, op, "tab %q not found", name)
	case errors.Is(err, ErrDuplicateName):
		return apperr.New(apperr.KindPreconditionFailed, op, "tab name %q already exists", name)
	default:
		return internal(op, err)
	}
}

func requireName(op, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.New(apperr.KindValidation, op, "tab name is required")
	}
	return name, nil
}

// AddTab creates a tab owned by p.
func (s *Service) AddTab(ctx context.Context, d Draft, p models.Principal) (*models.Tab, error) {
	const op = "AddTab"

	name, err := requireName(op, d.Name)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.AdministerTab, policy.Resource{}); err != nil {
		return nil, err
	}

	tab := &models.Tab{
		Name:           name,
		User:           p.Username,
		UserType:       p.Role,
		Table:          d.Table,
		WaiterRequest:  d.WaiterRequest,
		WaiterText:     d.WaiterText,
		SupportRequest: d.SupportRequest,
		SupportText:    d.SupportText,
	}
	id, err := s.store.Create(ctx, tab)
	if err != nil {
		return nil, mapStoreError(op, name, err)
	}
	tab.ID = id

	log.Printf("[TAB] [INFO] tab %q added by %s", name, p.Username)
	return tab, nil
}

func (s *Service) DeleteTab(ctx context.Context, name string, p models.Principal) error {
	const op = "DeleteTab"

	name, err := requireName(op, name)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.AdministerTab, policy.Resource{}); err != nil {
		return err
	}
	if err := mapStoreError(op, name, s.store.Delete(ctx, name)); err != nil {
		return err
	}

	log.Printf("[TAB] [INFO] tab %q deleted by %s", name, p.Username)
	return nil
}

func (s *Service) RenameTab(ctx context.Context, oldName, newName string, p models.Principal) error {
	const op = "RenameTab"

	oldName, err := requireName(op, oldName)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperr.New(apperr.KindValidation, op, "new name is required")
	}
	if err := policy.Authorize(p, policy.AdministerTab, policy.Resource{}); err != nil {
		return err
	}

	err = s.store.Rename(ctx, oldName, newName)
	if errors.Is(err, ErrDuplicateName) {
		return mapStoreError(op, newName, err)
	}
	if err := mapStoreError(op, oldName, err); err != nil {
		return err
	}

	log.Printf("[TAB] [INFO] tab %q renamed to %q by %s", oldName, newName, p.Username)
	return nil
}

// AssignTable moves a tab to another table and records p as its user.
func (s *Service) AssignTable(ctx context.Context, name string, table int, p models.Principal) error {
	const op = "AssignTable"

	name, err := requireName(op, name)
	if err != nil {
		return err
	}
	if table < 0 {
		return apperr.New(apperr.KindValidation, op, "table must not be negative")
	}
	if err := policy.Authorize(p, policy.AdministerTab, policy.Resource{}); err != nil {
		return err
	}

	u := Update{Table: &table, User: &p.Username, UserType: &p.Role}
	if err := mapStoreError(op, name, s.store.Update(ctx, name, u)); err != nil {
		return err
	}

	log.Printf("[TAB] [INFO] tab %q assigned to table %d by %s", name, table, p.Username)
	return nil
}

func (s *Service) ListTabs(ctx context.Context, p models.Principal) ([]models.Tab, error) {
	const op = "ListTabs"

	if p.Username == "" {
		return nil, apperr.New(apperr.KindForbidden, op, "unauthenticated principal")
	}
	tabs, err := s.store.List(ctx)
	if err != nil {
		return nil, internal(op, err)
	}
	return tabs, nil
}

func (s *Service) CallWaiter(ctx context.Context, name, text string, p models.Principal) error {
	on := true
	return s.serviceRequest(ctx, "CallWaiter", name, p, Update{WaiterRequest: &on, WaiterText: &text})
}

func (s *Service) ClearWaiter(ctx context.Context, name string, p models.Principal) error {
	off, empty := false, ""
	return s.serviceRequest(ctx, "ClearWaiter", name, p, Update{WaiterRequest: &off, WaiterText: &empty})
}

func (s *Service) CallSupport(ctx context.Context, name, text string, p models.Principal) error {
	on := true
	return s.serviceRequest(ctx, "CallSupport", name, p, Update{SupportRequest: &on, SupportText: &text})
}

func (s *Service) ClearSupport(ctx context.Context, name string, p models.Principal) error {
	off, empty := false, ""
	return s.serviceRequest(ctx, "ClearSupport", name, p, Update{SupportRequest: &off, SupportText: &empty})
}

func (s *Service) serviceRequest(ctx context.Context, op, name string, p models.Principal, u Update) error {
	name, err := requireName(op, name)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.RequestService, policy.Resource{}); err != nil {
		return err
	}
	if err := mapStoreError(op, name, s.store.Update(ctx, name, u)); err != nil {
		return err
	}

	log.Printf("[TAB] [INFO] %s on tab %q by %s", op, name, p.Username)
	return nil
}
