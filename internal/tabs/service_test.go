package tabs_test

import (
	"context"
	"errors"
	"testing"

	"tabserv/internal/apperr"
	"tabserv/internal/database"
	"tabserv/internal/models"
	"tabserv/internal/tabs"
)

var (
	manager = models.Principal{Username: "mgr", Role: models.RoleManager}
	admin   = models.Principal{Username: "root", Role: models.RoleAdmin}
	cook    = models.Principal{Username: "chef1", Role: models.RoleCook}
	guest   = models.Principal{Username: "alice", Role: "customer"}
)

func newService() *tabs.Service {
	return tabs.NewService(database.NewMemoryTabStore())
}

func findTab(t *testing.T, svc *tabs.Service, name string) models.Tab {
	t.Helper()
	list, err := svc.ListTabs(context.Background(), manager)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, tab := range list {
		if tab.Name == name {
			return tab
		}
	}
	t.Fatalf("tab %q not found", name)
	return models.Tab{}
}

func TestAddTabTakesIdentityFromPrincipal(t *testing.T) {
	svc := newService()
	table := 3

	tab, err := svc.AddTab(context.Background(), tabs.Draft{Name: " patio ", Table: &table}, manager)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tab.Name != "patio" || tab.User != "mgr" || tab.UserType != models.RoleManager {
		t.Fatalf("unexpected tab: %+v", tab)
	}
	if tab.ID.IsZero() {
		t.Fatal("expected id")
	}

	_, err = svc.AddTab(context.Background(), tabs.Draft{Name: "patio"}, admin)
	if !errors.Is(err, apperr.PreconditionFailed) {
		t.Fatalf("duplicate: expected PreconditionFailed, got %v", err)
	}

	_, err = svc.AddTab(context.Background(), tabs.Draft{Name: "  "}, admin)
	if !errors.Is(err, apperr.Validation) {
		t.Fatalf("blank name: expected Validation, got %v", err)
	}
}

func TestTabAdministrationRequiresAdminOrManager(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.AddTab(ctx, tabs.Draft{Name: "bar"}, admin); err != nil {
		t.Fatal(err)
	}

	staffWithPrivilege := models.Principal{Username: "w", Role: models.RoleWaiter, Privilege: models.RoleAdmin}
	for _, p := range []models.Principal{cook, guest, staffWithPrivilege} {
		if _, err := svc.AddTab(ctx, tabs.Draft{Name: "new"}, p); !errors.Is(err, apperr.Forbidden) {
			t.Fatalf("%s add: expected Forbidden, got %v", p.Username, err)
		}
		if err := svc.DeleteTab(ctx, "bar", p); !errors.Is(err, apperr.Forbidden) {
			t.Fatalf("%s delete: expected Forbidden, got %v", p.Username, err)
		}
		if err := svc.RenameTab(ctx, "bar", "pub", p); !errors.Is(err, apperr.Forbidden) {
			t.Fatalf("%s rename: expected Forbidden, got %v", p.Username, err)
		}
		if err := svc.AssignTable(ctx, "bar", 2, p); !errors.Is(err, apperr.Forbidden) {
			t.Fatalf("%s assign: expected Forbidden, got %v", p.Username, err)
		}
	}
}

func TestRenameAssignAndDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for _, name := range []string{"bar", "patio"} {
		if _, err := svc.AddTab(ctx, tabs.Draft{Name: name}, admin); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.RenameTab(ctx, "bar", "patio", manager); !errors.Is(err, apperr.PreconditionFailed) {
		t.Fatalf("rename onto existing: got %v", err)
	}
	if err := svc.RenameTab(ctx, "missing", "x", manager); !errors.Is(err, apperr.NotFound) {
		t.Fatalf("rename missing: got %v", err)
	}
	if err := svc.RenameTab(ctx, "bar", "lounge", manager); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if err := svc.AssignTable(ctx, "lounge", 8, manager); err != nil {
		t.Fatalf("assign: %v", err)
	}
	tab := findTab(t, svc, "lounge")
	if tab.Table == nil || *tab.Table != 8 || tab.User != "mgr" || tab.UserType != models.RoleManager {
		t.Fatalf("unexpected tab after assign: %+v", tab)
	}
	if err := svc.AssignTable(ctx, "lounge", -1, manager); !errors.Is(err, apperr.Validation) {
		t.Fatalf("negative table: got %v", err)
	}

	if err := svc.DeleteTab(ctx, "lounge", manager); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteTab(ctx, "lounge", manager); !errors.Is(err, apperr.NotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestServiceCallsOpenToAnyAuthenticatedPrincipal(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.AddTab(ctx, tabs.Draft{Name: "t1"}, admin); err != nil {
		t.Fatal(err)
	}

	if err := svc.CallWaiter(ctx, "t1", "menu please", guest); err != nil {
		t.Fatalf("call waiter: %v", err)
	}
	if err := svc.CallSupport(ctx, "t1", "card reader", cook); err != nil {
		t.Fatalf("call support: %v", err)
	}
	tab := findTab(t, svc, "t1")
	if !tab.WaiterRequest || tab.WaiterText != "menu please" || !tab.SupportRequest || tab.SupportText != "card reader" {
		t.Fatalf("flags not raised: %+v", tab)
	}
	if tab.User != "root" {
		t.Fatalf("service call must not change the tab owner, got %q", tab.User)
	}

	if err := svc.ClearWaiter(ctx, "t1", guest); err != nil {
		t.Fatalf("clear waiter: %v", err)
	}
	if err := svc.ClearSupport(ctx, "t1", guest); err != nil {
		t.Fatalf("clear support: %v", err)
	}
	tab = findTab(t, svc, "t1")
	if tab.WaiterRequest || tab.WaiterText != "" || tab.SupportRequest || tab.SupportText != "" {
		t.Fatalf("flags not cleared: %+v", tab)
	}

	if err := svc.CallWaiter(ctx, "t1", "", models.Principal{}); !errors.Is(err, apperr.Forbidden) {
		t.Fatalf("anonymous call: got %v", err)
	}
	if err := svc.CallWaiter(ctx, "nope", "", guest); !errors.Is(err, apperr.NotFound) {
		t.Fatalf("missing tab: got %v", err)
	}
}
