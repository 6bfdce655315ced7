package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/phone"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
)

var (
	joey   = contact.New("Doe", contact.WithFirstName("Joey"))
	tom    = contact.New("Catto", contact.WithFirstName("Tom"), contact.WithCompany("Black Cat"))
	nobody = contact.New("")
)

func TestReconcileIdentity(t *testing.T) {
	for _, contacts := range [][]contact.Contact{
		nil,
		{joey},
		{joey, tom, nobody},
	} {
		cs := reconcile.Reconcile(contacts, contacts)
		assert.Empty(t, cs.Added)
		assert.Empty(t, cs.Removed)
		assert.True(t, cs.IsEmpty())
		assert.False(t, cs.HasChanges())
		assert.Equal(t, len(contacts), cs.Summary.Unchanged)
	}
}

func TestReconcileAddOnly(t *testing.T) {
	cs := reconcile.Reconcile([]contact.Contact{joey}, nil)
	assert.Equal(t, []contact.Contact{joey}, cs.Added)
	assert.Empty(t, cs.Removed)
	assert.Equal(t, 1, cs.Summary.TotalChanges)
}

func TestReconcileRemoveOnly(t *testing.T) {
	cs := reconcile.Reconcile(nil, []contact.Contact{joey})
	assert.Empty(t, cs.Added)
	assert.Equal(t, []contact.Contact{joey}, cs.Removed)
}

func TestReconcileChangedContactIsDeleteThenAdd(t *testing.T) {
	updated := joey
	updated.PhoneMobile = phone.MustParse("+49 5555 234", "DE")

	cs := reconcile.Reconcile([]contact.Contact{updated, tom}, []contact.Contact{joey, tom})
	assert.Equal(t, []contact.Contact{joey}, cs.Removed)
	assert.Equal(t, []contact.Contact{updated}, cs.Added)
	assert.Equal(t, reconcile.Summary{Added: 1, Removed: 1, Unchanged: 1, TotalChanges: 2}, cs.Summary)
}

func TestReconcileCollapsesDuplicates(t *testing.T) {
	cs := reconcile.Reconcile([]contact.Contact{joey, joey, tom}, []contact.Contact{tom, tom})
	assert.Equal(t, []contact.Contact{joey}, cs.Added)
	assert.Empty(t, cs.Removed)
	assert.Equal(t, 1, cs.Summary.Unchanged)
}

func TestReconcileOutputIsSorted(t *testing.T) {
	a := contact.New("Adams")
	b := contact.New("Brown")
	c := contact.New("Clark")

	cs := reconcile.Reconcile([]contact.Contact{c, a, b}, nil)
	assert.Equal(t, []contact.Contact{a, b, c}, cs.Added)
}

func TestChangesetString(t *testing.T) {
	assert.Equal(t, "No changes detected (1 unchanged)", reconcile.Reconcile([]contact.Contact{joey}, []contact.Contact{joey}).String())

	cs := reconcile.Reconcile([]contact.Contact{joey, tom}, []contact.Contact{nobody})
	assert.Equal(t, "Changeset: 2 added, 1 removed, 0 unchanged (Total: 3 changes)", cs.String())
}

func TestFilter(t *testing.T) {
	cs := reconcile.Reconcile([]contact.Contact{joey}, []contact.Contact{tom})

	assert.Same(t, cs, cs.Filter(reconcile.ApplyAll))

	additive := cs.Filter(reconcile.ApplyAdditive)
	assert.Equal(t, []contact.Contact{joey}, additive.Added)
	assert.Empty(t, additive.Removed)
	assert.Equal(t, 1, additive.Summary.TotalChanges)

	// The original is left untouched.
	assert.Len(t, cs.Removed, 1)
}

func TestParseApplyStrategy(t *testing.T) {
	s, err := reconcile.ParseApplyStrategy("")
	require.NoError(t, err)
	assert.Equal(t, reconcile.ApplyAll, s)

	s, err = reconcile.ParseApplyStrategy("Additive")
	require.NoError(t, err)
	assert.Equal(t, reconcile.ApplyAdditive, s)
	assert.True(t, s.Valid())

	_, err = reconcile.ParseApplyStrategy("mirror")
	assert.Error(t, err)
	assert.False(t, reconcile.ApplyStrategy("mirror").Valid())
}
