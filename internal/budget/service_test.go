package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store. InTx applies fn to a copy and only keeps
// the copy when fn succeeds.
type memStore struct {
	cats     []core.CategoryBudget
	expenses []core.Expense
	nextID   int64
}

func newMemStore() *memStore { return &memStore{nextID: 1} }

func (m *memStore) ListCategories(_ context.Context, activeOnly bool) ([]core.CategoryBudget, error) {
	var out []core.CategoryBudget
	for _, c := range m.cats {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) GetCategory(_ context.Context, id int64) (core.CategoryBudget, error) {
	for _, c := range m.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return core.CategoryBudget{}, core.ErrNotFound
}

func (m *memStore) GetCategoryByName(_ context.Context, name string) (core.CategoryBudget, error) {
	for _, c := range m.cats {
		if c.Name == name {
			return c, nil
		}
	}
	return core.CategoryBudget{}, core.ErrNotFound
}

func (m *memStore) CreateCategory(_ context.Context, c *core.CategoryBudget) error {
	for _, existing := range m.cats {
		if existing.Name == c.Name {
			return core.ErrCategoryExists
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.cats = append(m.cats, *c)
	return nil
}

func (m *memStore) UpdateCategory(_ context.Context, c core.CategoryBudget) error {
	for i := range m.cats {
		if m.cats[i].ID == c.ID {
			m.cats[i] = c
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memStore) DeleteCategory(_ context.Context, id int64) error {
	for i := range m.cats {
		if m.cats[i].ID == id {
			m.cats = append(m.cats[:i], m.cats[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memStore) CountExpensesForCategory(_ context.Context, name string) (int64, error) {
	var n int64
	for _, e := range m.expenses {
		if e.Category == name {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SumExpensesByCategory(_ context.Context, f core.ExpenseFilter) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, e := range m.expenses {
		if f.Range.Contains(e.Date) && (f.Category == "" || f.Category == e.Category) {
			out[e.Category] = out[e.Category].Add(e.Amount)
		}
	}
	return out, nil
}

func (m *memStore) ExpenseCategoryNames(_ context.Context) (map[string]bool, error) {
	out := map[string]bool{}
	for _, e := range m.expenses {
		out[e.Category] = true
	}
	return out, nil
}

func (m *memStore) InTx(_ context.Context, fn func(Store) error) error {
	tx := &memStore{
		cats:     append([]core.CategoryBudget(nil), m.cats...),
		expenses: m.expenses,
		nextID:   m.nextID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.cats, m.nextID = tx.cats, tx.nextID
	return nil
}

func (m *memStore) addCategory(name string, budget int64, active bool) core.CategoryBudget {
	c := core.CategoryBudget{Name: name, BudgetAmount: decimal.NewFromInt(budget), IsActive: active}
	_ = m.CreateCategory(context.Background(), &c)
	return c
}

func (m *memStore) addExpense(category, amount, day string) {
	d, _ := time.Parse(core.DateLayout, day)
	m.expenses = append(m.expenses, core.Expense{
		ID:       int64(len(m.expenses) + 1),
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     d,
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeStat(t *testing.T) {
	tests := []struct {
		name          string
		budget        string
		spent         string
		active        bool
		wantRemaining string
		wantPercent   string
		wantOver      bool
		wantDropdown  bool
	}{
		{"untouched", "1000", "0", true, "1000", "0", false, true},
		{"partial", "300", "100", true, "200", "33.33", false, true},
		{"exactly exhausted", "50", "50", true, "0", "100", false, false},
		{"over budget", "100", "120.5", true, "-20.5", "120.5", true, false},
		{"inactive with room", "100", "10", false, "90", "10", false, false},
		{"zero budget", "0", "10", true, "-10", "0", true, false},
		{"rounding", "3", "1.005", true, "2", "33.5", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := core.CategoryBudget{Name: "x", BudgetAmount: dec(tt.budget), IsActive: tt.active}
			st := ComputeStat(c, dec(tt.spent))
			assert.True(t, st.Remaining.Equal(dec(tt.wantRemaining)), "remaining %s", st.Remaining)
			assert.True(t, st.PercentageUsed.Equal(dec(tt.wantPercent)), "percentage %s", st.PercentageUsed)
			assert.Equal(t, tt.wantOver, st.OverBudget)
			assert.Equal(t, tt.wantDropdown, st.DropdownVisible)
		})
	}
}

func TestComputeCategoryStats(t *testing.T) {
	store := newMemStore()
	store.addCategory("Food", 100, true)
	store.addCategory("Transport", 50, true)
	store.addCategory("Old", 10, false)
	store.addExpense("Food", "20", "2024-01-01")
	store.addExpense("Food", "30", "2024-01-02")
	store.addExpense("Transport", "50", "2024-01-01")
	store.addExpense("Old", "5", "2024-01-01")
	store.addExpense("Orphan", "99", "2024-01-01")

	svc := NewService(store)
	stats, err := svc.ComputeCategoryStats(context.Background(), core.DateRange{})
	require.NoError(t, err)

	require.Equal(t, 2, stats.Len())
	_, ok := stats.Get("Old")
	assert.False(t, ok, "inactive categories are not aggregated")
	_, ok = stats.Get("Orphan")
	assert.False(t, ok, "orphaned names are tolerated and skipped")

	food, _ := stats.Get("Food")
	assert.True(t, food.TotalExpenses.Equal(dec("50")))
	assert.True(t, food.PercentageUsed.Equal(dec("50")))
	assert.Equal(t, []string{"Food"}, stats.DropdownCategories())

	r, err := core.NewDateRange("2024-01-02", "2024-01-02")
	require.NoError(t, err)
	stats, err = svc.ComputeCategoryStats(context.Background(), r)
	require.NoError(t, err)
	food, _ = stats.Get("Food")
	transport, _ := stats.Get("Transport")
	assert.True(t, food.TotalExpenses.Equal(dec("30")))
	assert.True(t, transport.TotalExpenses.IsZero())
	assert.ElementsMatch(t, []string{"Food", "Transport"}, stats.DropdownCategories())
}

func TestDropdownNeverShowsExhausted(t *testing.T) {
	store := newMemStore()
	for i, budget := range []int64{10, 20, 30, 40} {
		store.addCategory(string(rune('A'+i)), budget, i%2 == 0)
		store.addExpense(string(rune('A'+i)), "20", "2024-05-05")
	}
	stats, err := NewService(store).ComputeCategoryStats(context.Background(), core.DateRange{})
	require.NoError(t, err)
	for _, st := range stats.All() {
		if !st.Remaining.IsPositive() || !st.Category.IsActive {
			assert.False(t, st.DropdownVisible, st.Category.Name)
		}
	}
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store)

	res, err := svc.AddCategory(ctx, core.CategoryInput{Name: "Books", BudgetAmount: "200"})
	require.NoError(t, err)
	assert.False(t, res.Reactivated)
	assert.True(t, res.Category.IsActive)

	_, err = svc.AddCategory(ctx, core.CategoryInput{Name: "Books", BudgetAmount: "300"})
	assert.True(t, errors.Is(err, core.ErrCategoryExists))

	inactive := store.addCategory("Travel", 100, false)
	res, err = svc.AddCategory(ctx, core.CategoryInput{Name: "Travel", BudgetAmount: "750"})
	require.NoError(t, err)
	assert.True(t, res.Reactivated)
	assert.Equal(t, inactive.ID, res.Category.ID)

	all, _ := svc.ListCategories(ctx)
	require.Len(t, all, 2, "reactivation must not create a duplicate row")
	travel, _ := store.GetCategoryByName(ctx, "Travel")
	assert.True(t, travel.IsActive)
	assert.True(t, travel.BudgetAmount.Equal(dec("750")))

	_, err = svc.AddCategory(ctx, core.CategoryInput{Name: " ", BudgetAmount: "1"})
	assert.ErrorIs(t, err, core.ErrEmptyName)
	_, err = svc.AddCategory(ctx, core.CategoryInput{Name: "Gym", BudgetAmount: "-1"})
	assert.ErrorIs(t, err, core.ErrNonPositiveAmount)
	_, err = svc.AddCategory(ctx, core.CategoryInput{Name: "Gym", BudgetAmount: "lots"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	unused := store.addCategory("Unused", 10, true)
	used := store.addCategory("Used", 10, true)
	store.addExpense("Used", "1", "2024-01-01")
	svc := NewService(store)

	res, err := svc.DeleteCategory(ctx, unused.ID)
	require.NoError(t, err)
	assert.False(t, res.Deactivated)
	_, err = store.GetCategory(ctx, unused.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	res, err = svc.DeleteCategory(ctx, used.ID)
	require.NoError(t, err)
	assert.True(t, res.Deactivated)
	kept, err := store.GetCategory(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)

	_, err = svc.DeleteCategory(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEditCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := store.addCategory("Food", 100, true)
	svc := NewService(store)

	updated, err := svc.EditCategory(ctx, c.ID, "250.50")
	require.NoError(t, err)
	assert.True(t, updated.BudgetAmount.Equal(dec("250.5")))

	_, err = svc.EditCategory(ctx, c.ID, "0")
	assert.ErrorIs(t, err, core.ErrNonPositiveAmount)
	_, err = svc.EditCategory(ctx, 42, "10")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoriesWithExpenses(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := store.addCategory("A", 1, true)
	b := store.addCategory("B", 1, false)
	store.addExpense("B", "1", "2024-01-01")
	svc := NewService(store)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	got, err := svc.CategoriesWithExpenses(ctx, cats)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{a.ID: false, b.ID: true}, got)
}

func TestServiceLogsWithBudgetComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Format: "json", Output: &buf}).WithComponent(log.ComponentBudget)
	svc := NewService(newMemStore(), WithLogger(logger))

	_, err := svc.AddCategory(context.Background(), core.CategoryInput{Name: "Books", BudgetAmount: "20"})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "Category added", rec["msg"])
	assert.Equal(t, log.ComponentBudget, rec[log.FieldComponent])
	assert.Equal(t, "Books", rec["name"])
}
