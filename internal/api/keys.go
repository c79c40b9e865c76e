package api

import "github.com/inisoye/halver-sub001/internal/cache"

// Registered query-key prefixes. One per logical resource; every read builds
// its full key by appending its own parameters (id, then search, then
// status, then page) to its prefix, and every invalidation targets a prefix
// so all parameterized variants of a resource go stale together.
var (
	keyUserDetails        = cache.NewKey("user-details")
	keyBill               = cache.NewKey("bill")
	keyBills              = cache.NewKey("bills")
	keyUserActions        = cache.NewKey("user-actions")
	keyActionStatusCounts = cache.NewKey("action-status-counts")
	keyBanks              = cache.NewKey("banks")
	keyCards              = cache.NewKey("cards")
	keyDefaultCard        = cache.NewKey("default-card")
	keyTransferRecipients = cache.NewKey("transfer-recipients")
	keyTransactions       = cache.NewKey("transactions")
)

// QueryKeys maps logical read names to their registered prefixes. Immutable
// after init.
var QueryKeys = map[string]cache.Key{
	"getUserDetails":         keyUserDetails,
	"getBill":                keyBill,
	"getBills":               keyBills,
	"getUserActionsByStatus": keyUserActions,
	"getActionStatusCounts":  keyActionStatusCounts,
	"getBanks":               keyBanks,
	"getCards":               keyCards,
	"getDefaultCard":         keyDefaultCard,
	"getTransferRecipients":  keyTransferRecipients,
	"getTransactions":        keyTransactions,
}

// invalidations declares, per mutation, which prefixes go stale on success.
// The sets are deliberately conservative: a mutation invalidates every
// resource it could plausibly have touched instead of tracking precise
// dependencies.
var invalidations = map[string][]cache.Key{
	"createBill":              {keyBills, keyUserActions, keyActionStatusCounts},
	"updateBill":              {keyBill, keyBills},
	"cancelBill":              {keyBill, keyBills, keyUserActions, keyActionStatusCounts},
	"updateBillAction":        {keyBill, keyBills, keyUserActions, keyActionStatusCounts},
	"updateUserDetails":       {keyUserDetails},
	"createTransferRecipient": {keyTransferRecipients},
	"deleteTransferRecipient": {keyTransferRecipients},
	"setDefaultCard":          {keyCards, keyDefaultCard, keyUserDetails},
	"deleteCard":              {keyCards, keyDefaultCard},
}

// InvalidationSet returns the declared invalidation prefixes for a mutation
// name, or nil if the mutation invalidates nothing.
func InvalidationSet(name string) []cache.Key {
	return invalidations[name]
}
