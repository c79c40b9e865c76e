package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inisoye/halver-sub001/internal/cache"
)

func TestQueryKeyPrefixesAreDistinct(t *testing.T) {
	seen := make(map[string]string)
	for name, key := range QueryKeys {
		s := key.String()
		if prior, dup := seen[s]; dup {
			t.Fatalf("reads %q and %q share prefix %q", prior, name, s)
		}
		seen[s] = name
	}
}

func TestParameterizedKeysExtendTheirPrefix(t *testing.T) {
	billsKey := QueryKeys["getBills"].With("rent", "2")
	assert.True(t, billsKey.HasPrefix(QueryKeys["getBills"]))
	assert.False(t, billsKey.HasPrefix(QueryKeys["getBill"]),
		"the bills list must not collide with the single-bill prefix")

	billKey := QueryKeys["getBill"].With("abc")
	assert.False(t, billKey.HasPrefix(QueryKeys["getBills"]))
}

func TestInvalidationTargetsRegisteredPrefixesOnly(t *testing.T) {
	registered := make(map[string]bool)
	for _, key := range QueryKeys {
		registered[key.String()] = true
	}
	for mutation, prefixes := range invalidations {
		require.NotEmpty(t, prefixes, "mutation %q declares an empty set", mutation)
		for _, p := range prefixes {
			assert.True(t, registered[p.String()],
				"mutation %q targets unregistered prefix %q", mutation, p.String())
		}
	}
}

func TestInvalidationSetMarksEveryVariant(t *testing.T) {
	qc := cache.New(cache.Options{})
	opts := cache.Options{StaleTime: time.Hour}

	qc.Set(QueryKeys["getBills"].With("", "1"), Page[Bill]{}, opts)
	qc.Set(QueryKeys["getBills"].With("rent", "1"), Page[Bill]{}, opts)
	qc.Set(QueryKeys["getBill"].With("abc"), BillDetail{}, opts)
	qc.Set(QueryKeys["getBanks"], []Bank{}, opts)

	for _, prefix := range InvalidationSet("createBill") {
		qc.Invalidate(prefix)
	}

	// Every bills-list variant is stale.
	_, res := qc.Get(QueryKeys["getBills"].With("", "1"))
	assert.Equal(t, cache.Stale, res)
	_, res = qc.Get(QueryKeys["getBills"].With("rent", "1"))
	assert.Equal(t, cache.Stale, res)

	// A single bill detail and the bank list are untouched.
	_, res = qc.Get(QueryKeys["getBill"].With("abc"))
	assert.Equal(t, cache.Fresh, res)
	_, res = qc.Get(QueryKeys["getBanks"])
	assert.Equal(t, cache.Fresh, res)
}

func TestCardMutationsCoverTheDefaultCard(t *testing.T) {
	// Changing the default card must unseat the profile too, since the
	// profile embeds the default card id.
	set := InvalidationSet("setDefaultCard")
	var hitsProfile bool
	for _, p := range set {
		if p.String() == QueryKeys["getUserDetails"].String() {
			hitsProfile = true
		}
	}
	assert.True(t, hitsProfile)

	assert.Nil(t, InvalidationSet("getBills"), "reads never invalidate")
}
