package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createGroup(t *testing.T, store *SQLiteStore, names ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Trip", CreatedBy: "creator"}
	for _, n := range names {
		group.Members = append(group.Members, models.Member{ID: n, Name: n})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and keeps roster order", func(t *testing.T) {
		group := &models.Group{
			Name:    "Roommates",
			Members: []models.Member{{ID: "u3", Name: "Cara"}, {Name: "Guest"}, {ID: "u1", Name: "Abe"}},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if group.Members[1].ID == "" {
			t.Error("Expected member ID to be generated")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" {
			t.Errorf("Name = %q, want Roommates", got.Name)
		}
		wantNames := []string{"Cara", "Guest", "Abe"}
		if len(got.Members) != len(wantNames) {
			t.Fatalf("got %d members, want %d", len(got.Members), len(wantNames))
		}
		for i, name := range wantNames {
			if got.Members[i].Name != name {
				t.Errorf("member[%d] = %q, want %q", i, got.Members[i].Name, name)
			}
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddGroupMembers appends and ignores duplicates", func(t *testing.T) {
		group := createGroup(t, store, "a", "b")
		err := store.AddGroupMembers(ctx, group.ID, []models.Member{{ID: "b", Name: "b"}, {ID: "c", Name: "c"}})
		if err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 3 || got.Members[2].ID != "c" {
			t.Errorf("unexpected roster %+v", got.Members)
		}
	})

	t.Run("AddGroupMembers to missing group", func(t *testing.T) {
		err := store.AddGroupMembers(ctx, "missing", []models.Member{{ID: "x", Name: "x"}})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForMember", func(t *testing.T) {
		createGroup(t, store, "lister", "other")
		createGroup(t, store, "lister")
		createGroup(t, store, "other")

		groups, err := store.ListGroupsForMember(ctx, "lister")
		if err != nil {
			t.Fatalf("ListGroupsForMember failed: %v", err)
		}
		if len(groups) != 2 {
			t.Errorf("got %d groups, want 2", len(groups))
		}
	})

	t.Run("RenameGroup", func(t *testing.T) {
		group := createGroup(t, store, "a")
		if err := store.RenameGroup(ctx, group.ID, "Beach"); err != nil {
			t.Fatalf("RenameGroup failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, group.ID)
		if got.Name != "Beach" {
			t.Errorf("Name = %q, want Beach", got.Name)
		}
		if err := store.RenameGroup(ctx, "missing", "x"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteGroup cascades to ledger", func(t *testing.T) {
		group := createGroup(t, store, "a", "b")
		expense := &models.Expense{
			GroupID: group.ID, PayerID: "a", Amount: dec("10"), Description: "Taxi", SplitType: "equal",
			Splits: []models.Split{{MemberID: "a", Amount: dec("5")}, {MemberID: "b", Amount: dec("5")}},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected expense to be deleted, got %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "a", "b", "c")

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     "a",
		Amount:      dec("100"),
		Description: "Dinner",
		SplitType:   "equal",
		Splits: []models.Split{
			{MemberID: "c", Amount: dec("33.34")},
			{MemberID: "a", Amount: dec("33.33")},
			{MemberID: "b", Amount: dec("33.33")},
		},
		CreatedBy: "a",
	}

	t.Run("CreateExpense and GetExpense round trip amounts exactly", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("100")) {
			t.Errorf("Amount = %s, want 100", got.Amount)
		}
		if len(got.Splits) != 3 {
			t.Fatalf("got %d splits, want 3", len(got.Splits))
		}
		if got.Splits[0].MemberID != "c" || !got.Splits[0].Amount.Equal(dec("33.34")) {
			t.Errorf("first split = %+v, want c 33.34", got.Splits[0])
		}
		if got.CreatedBy != "a" || got.SplitType != "equal" {
			t.Errorf("unexpected metadata %+v", got)
		}
	})

	t.Run("UpdateExpense replaces splits", func(t *testing.T) {
		expense.Amount = dec("60")
		expense.Description = "Lunch"
		expense.Splits = []models.Split{{MemberID: "b", Amount: dec("60")}}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Lunch" || !got.Amount.Equal(dec("60")) {
			t.Errorf("unexpected expense %+v", got)
		}
		if len(got.Splits) != 1 || got.Splits[0].MemberID != "b" {
			t.Errorf("unexpected splits %+v", got.Splits)
		}
	})

	t.Run("UpdateExpense on missing expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "missing", Amount: dec("1")})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpensesByGroup attaches splits", func(t *testing.T) {
		second := &models.Expense{
			GroupID: group.ID, PayerID: "b", Amount: dec("9"), Description: "Coffee", SplitType: "equal",
			Splits: []models.Split{
				{MemberID: "a", Amount: dec("3")},
				{MemberID: "b", Amount: dec("3")},
				{MemberID: "c", Amount: dec("3")},
			},
			CreatedAt: expense.CreatedAt + 10,
		}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("got %d expenses, want 2", len(expenses))
		}
		if expenses[0].ID != second.ID {
			t.Errorf("expected newest expense first")
		}
		if len(expenses[0].Splits) != 3 || len(expenses[1].Splits) != 1 {
			t.Errorf("splits not attached: %d, %d", len(expenses[0].Splits), len(expenses[1].Splits))
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "a", "b")

	settlement := &models.Settlement{
		GroupID:    group.ID,
		PayerID:    "b",
		ReceiverID: "a",
		Amount:     dec("12.50"),
		CreatedBy:  "b",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	t.Run("GetSettlement without note", func(t *testing.T) {
		got, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.PayerID != "b" || got.ReceiverID != "a" || !got.Amount.Equal(dec("12.5")) {
			t.Errorf("unexpected settlement %+v", got)
		}
		if got.Note != "" {
			t.Errorf("Note = %q, want empty", got.Note)
		}
	})

	t.Run("ListSettlementsByGroup", func(t *testing.T) {
		withNote := &models.Settlement{
			GroupID: group.ID, PayerID: "a", ReceiverID: "b", Amount: dec("1"), Note: "cash",
			CreatedAt: settlement.CreatedAt + 5,
		}
		if err := store.CreateSettlement(ctx, withNote); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(settlements) != 2 || settlements[0].Note != "cash" {
			t.Errorf("unexpected settlements %+v", settlements)
		}
	})

	t.Run("DeleteSettlement", func(t *testing.T) {
		if err := store.DeleteSettlement(ctx, settlement.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLedgerAndActivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createGroup(t, store, "x", "y")

	expense := &models.Expense{
		GroupID: group.ID, PayerID: "x", Amount: dec("20"), Description: "Groceries", SplitType: "equal",
		Splits:    []models.Split{{MemberID: "x", Amount: dec("10")}, {MemberID: "y", Amount: dec("10")}},
		CreatedAt: 1000,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	settlement := &models.Settlement{
		GroupID: group.ID, PayerID: "y", ReceiverID: "x", Amount: dec("10"), CreatedAt: 2000,
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	t.Run("GetLedger", func(t *testing.T) {
		ledger, err := store.GetLedger(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetLedger failed: %v", err)
		}
		if len(ledger.Group.Members) != 2 {
			t.Errorf("got %d members, want 2", len(ledger.Group.Members))
		}
		if len(ledger.Expenses) != 1 || len(ledger.Expenses[0].Splits) != 2 {
			t.Errorf("unexpected expenses %+v", ledger.Expenses)
		}
		if len(ledger.Settlements) != 1 {
			t.Errorf("got %d settlements, want 1", len(ledger.Settlements))
		}
	})

	t.Run("GetLedger for missing group", func(t *testing.T) {
		if _, err := store.GetLedger(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListActivity is newest first and limited", func(t *testing.T) {
		activity, err := store.ListActivity(ctx, group.ID, 10)
		if err != nil {
			t.Fatalf("ListActivity failed: %v", err)
		}
		if len(activity) != 2 {
			t.Fatalf("got %d entries, want 2", len(activity))
		}
		if activity[0].Kind != models.ActivitySettlement || activity[1].Kind != models.ActivityExpense {
			t.Errorf("unexpected order: %s, %s", activity[0].Kind, activity[1].Kind)
		}
		if activity[1].Description != "Groceries" || !activity[1].Amount.Equal(dec("20")) {
			t.Errorf("unexpected expense entry %+v", activity[1])
		}
		if activity[0].ActorID != "y" || activity[0].CounterpartyID != "x" || activity[0].Description != "" {
			t.Errorf("unexpected settlement entry %+v", activity[0])
		}
		if activity[1].CounterpartyID != "" {
			t.Errorf("expense entry has counterparty %q", activity[1].CounterpartyID)
		}

		limited, err := store.ListActivity(ctx, group.ID, 1)
		if err != nil {
			t.Fatalf("ListActivity failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("got %d entries, want 1", len(limited))
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByEmail is case-insensitive", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.COM")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Errorf("expected user %s, got %+v", user.ID, got)
		}
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, "missing")
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil user, got %+v", got)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected duplicate email to fail")
		}
	})

	t.Run("GetUsersByIDs omits unknown ids", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID] == nil {
			t.Errorf("unexpected users %+v", users)
		}
	})
}
