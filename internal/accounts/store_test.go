package accounts_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/IdentityGrid/internal/accounts"
	"github.com/atinyakov/IdentityGrid/internal/labels"
	"github.com/atinyakov/IdentityGrid/internal/models"
)

func sequentialIDs() accounts.Option {
	n := 0
	return accounts.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("acc-%d", n)
	})
}

func TestAdd_CreatesEmptyLocalAccount(t *testing.T) {
	store := accounts.NewStore()
	require.Equal(t, 0, store.Count())

	acc := store.Add()

	assert.Equal(t, 1, store.Count())
	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, []models.LabelItem{}, acc.Labels)
	assert.Equal(t, models.Local, acc.Type)
	assert.Equal(t, "", acc.Login)
	require.NotNil(t, acc.Password)
	assert.Equal(t, "", *acc.Password)
}

func TestAdd_UniqueIDsAppendedLast(t *testing.T) {
	store := accounts.NewStore()
	ids := make(map[string]struct{})
	var last string
	for i := 0; i < 100; i++ {
		acc := store.Add()
		ids[acc.ID] = struct{}{}
		last = acc.ID
	}
	assert.Len(t, ids, 100)
	list := store.List()
	assert.Equal(t, last, list[len(list)-1].ID)
}

func TestUpdate_Fields(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()

	ok := store.Update(acc.ID, models.AccountUpdate{Login: models.StringPtr("admin")})
	require.True(t, ok)
	got, _ := store.Get(acc.ID)
	assert.Equal(t, "admin", got.Login)

	store.Update(acc.ID, models.AccountUpdate{Password: models.StringPtr("secret123")})
	got, _ = store.Get(acc.ID)
	assert.Equal(t, "secret123", *got.Password)
	assert.Equal(t, "admin", got.Login)

	store.Update(acc.ID, models.AccountUpdate{Labels: labels.Parse("admin;user")})
	got, _ = store.Get(acc.ID)
	assert.Equal(t, []models.LabelItem{{Text: "admin"}, {Text: "user"}}, got.Labels)

	store.Update(acc.ID, models.AccountUpdate{Labels: []models.LabelItem{}})
	got, _ = store.Get(acc.ID)
	assert.Empty(t, got.Labels)
	assert.Equal(t, acc.ID, got.ID)
}

func TestUpdate_LDAPClearsPassword(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()

	store.Update(acc.ID, models.AccountUpdate{Password: models.StringPtr("secret123")})
	store.Update(acc.ID, models.AccountUpdate{Type: models.TypePtr(models.LDAP)})

	got, _ := store.Get(acc.ID)
	assert.Equal(t, models.LDAP, got.Type)
	assert.Nil(t, got.Password)
}

func TestUpdate_LDAPIgnoresSuppliedPassword(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()

	store.Update(acc.ID, models.AccountUpdate{
		Type:     models.TypePtr(models.LDAP),
		Password: models.StringPtr("should-be-null"),
	})

	got, _ := store.Get(acc.ID)
	assert.Nil(t, got.Password)
}

func TestUpdate_LDAPStaysPasswordless(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()
	store.Update(acc.ID, models.AccountUpdate{Type: models.TypePtr(models.LDAP)})

	store.Update(acc.ID, models.AccountUpdate{Login: models.StringPtr("ldapuser")})
	store.Update(acc.ID, models.AccountUpdate{Password: models.StringPtr("x")})

	got, _ := store.Get(acc.ID)
	assert.Nil(t, got.Password)
	assert.Equal(t, "ldapuser", got.Login)
}

func TestUpdate_BackToLocal(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()
	store.Update(acc.ID, models.AccountUpdate{Type: models.TypePtr(models.LDAP)})

	store.Update(acc.ID, models.AccountUpdate{
		Type:     models.TypePtr(models.Local),
		Password: models.StringPtr("fresh"),
	})

	got, _ := store.Get(acc.ID)
	assert.Equal(t, models.Local, got.Type)
	require.NotNil(t, got.Password)
	assert.Equal(t, "fresh", *got.Password)
}

func TestUpdate_NotFound(t *testing.T) {
	store := accounts.NewStore()
	store.Add()
	before := store.List()

	ok := store.Update("non-existent-id", models.AccountUpdate{Login: models.StringPtr("admin")})

	assert.False(t, ok)
	assert.Equal(t, before, store.List())
}

func TestRemove_KeepsOrder(t *testing.T) {
	store := accounts.NewStore(sequentialIDs())
	a, b, c := store.Add(), store.Add(), store.Add()

	require.True(t, store.Remove(b.ID))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
	_, found := store.Get(b.ID)
	assert.False(t, found)
}

func TestRemove_NotFound(t *testing.T) {
	store := accounts.NewStore()
	store.Add()
	store.Add()
	before := store.List()

	assert.False(t, store.Remove("nope"))
	assert.Equal(t, before, store.List())
	assert.Equal(t, 2, store.Count())
}

func TestClear(t *testing.T) {
	store := accounts.NewStore()
	store.Add()
	store.Add()

	store.Clear()

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.List())
}

func TestGet_ReturnsCopy(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()
	store.Update(acc.ID, models.AccountUpdate{Labels: labels.Parse("a;b")})

	got, ok := store.Get(acc.ID)
	require.True(t, ok)
	got.Labels[0].Text = "changed"
	*got.Password = "changed"

	again, _ := store.Get(acc.ID)
	assert.Equal(t, "a", again.Labels[0].Text)
	assert.Equal(t, "", *again.Password)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestReplace_Normalizes(t *testing.T) {
	store := accounts.NewStore(sequentialIDs())
	store.Replace([]models.Account{
		{ID: "1", Type: models.LDAP, Login: "ldap", Password: models.StringPtr("leaked")},
		{ID: "2", Type: "BOGUS", Login: "x", Password: models.StringPtr("p")},
		{ID: "1", Type: models.Local, Login: "dup"},
		{Type: models.Local, Login: "no id"},
	})

	list := store.List()
	require.Len(t, list, 3)
	assert.Nil(t, list[0].Password)
	assert.Equal(t, models.Local, list[1].Type)
	assert.Equal(t, []models.LabelItem{}, list[1].Labels)
	assert.Equal(t, "acc-1", list[2].ID)
	assert.Equal(t, "no id", list[2].Login)
}

func TestOnChange(t *testing.T) {
	store := accounts.NewStore()
	var snapshots [][]models.Account
	store.OnChange(func(accs []models.Account) {
		snapshots = append(snapshots, accs)
	})

	acc := store.Add()
	store.Update(acc.ID, models.AccountUpdate{Login: models.StringPtr("u")})
	store.Update("missing", models.AccountUpdate{Login: models.StringPtr("u")})
	store.Remove("missing")
	store.Remove(acc.ID)
	store.Clear()

	require.Len(t, snapshots, 4)
	assert.Len(t, snapshots[0], 1)
	assert.Equal(t, "u", snapshots[1][0].Login)
	assert.Empty(t, snapshots[2])
	assert.Empty(t, snapshots[3])
}

func TestScenario_LocalToLDAP(t *testing.T) {
	store := accounts.NewStore()
	acc := store.Add()

	store.Update(acc.ID, models.AccountUpdate{Password: models.StringPtr("secret")})
	store.Update(acc.ID, models.AccountUpdate{Type: models.TypePtr(models.LDAP)})
	store.Update(acc.ID, models.AccountUpdate{Labels: labels.Parse(" admin ; user ;")})

	got, _ := store.Get(acc.ID)
	assert.Equal(t, models.LDAP, got.Type)
	assert.Nil(t, got.Password)
	assert.Equal(t, []models.LabelItem{{Text: "admin"}, {Text: "user"}}, got.Labels)
}
