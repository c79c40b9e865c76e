package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"single part", NewKey("bills"), "bills"},
		{"with params", NewKey("bills").With("groceries", "2"), "bills/groceries/2"},
		{"empty param kept", NewKey("bills").With("", "1"), "bills//1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKeyIdentity(t *testing.T) {
	// Two logical requests with identical parameters must build the same
	// key from the same prefix.
	prefix := NewKey("user-actions")
	a := prefix.With("pending", "1")
	b := prefix.With("pending", "1")
	assert.Equal(t, a.String(), b.String())

	c := prefix.With("pending", "2")
	assert.NotEqual(t, a.String(), c.String())
}

func TestKeyWithDoesNotMutateReceiver(t *testing.T) {
	prefix := NewKey("bill")
	_ = prefix.With("abc")
	_ = prefix.With("def")
	assert.Equal(t, "bill", prefix.String())
}

func TestKeyHasPrefix(t *testing.T) {
	tests := []struct {
		name   string
		key    Key
		prefix Key
		want   bool
	}{
		{"exact match", NewKey("bills"), NewKey("bills"), true},
		{"parameterized variant", NewKey("bills", "search", "2"), NewKey("bills"), true},
		{"different resource", NewKey("bill", "abc"), NewKey("bills"), false},
		{"prefix longer than key", NewKey("bills"), NewKey("bills", "x"), false},
		{"mid-element no match", NewKey("user-actions", "pending"), NewKey("user"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.HasPrefix(tt.prefix))
		})
	}
}
