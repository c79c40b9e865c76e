package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/inisoye/halver-sub001/internal/cache"
)

// Bank is one entry of the supported-banks list. The list endpoint is
// pass-through: several hundred rows, shape owned by the payment provider,
// so it is decoded without schema validation.
type Bank struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Code string `json:"code"`
	Logo string `json:"logo"`
}

// Card is a stored payment card. Only the redacted trailing digits ever
// leave the backend.
type Card struct {
	UUID        string    `json:"uuid" validate:"required"`
	CardType    string    `json:"cardType"`
	Last4       string    `json:"last4" validate:"required,len=4"`
	ExpMonth    string    `json:"expMonth"`
	ExpYear     string    `json:"expYear"`
	Bank        string    `json:"bank"`
	AccountName string    `json:"accountName"`
	IsDefault   bool      `json:"isDefault"`
	Created     time.Time `json:"created"`
}

// TransferRecipient is a registered payout destination.
type TransferRecipient struct {
	UUID          string    `json:"uuid"`
	Name          string    `json:"name"`
	RecipientCode string    `json:"recipientCode"`
	RecipientType string    `json:"recipientType"`
	AccountNumber string    `json:"accountNumber"`
	BankCode      string    `json:"bankCode"`
	BankName      string    `json:"bankName"`
	EmailAddress  string    `json:"email"`
	IsDefault     bool      `json:"isDefault"`
	Created       time.Time `json:"created"`
}

// CreateRecipientPayload registers a new payout destination.
type CreateRecipientPayload struct {
	Name          string `json:"name"`
	RecipientType string `json:"recipientType"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
}

// Transaction is one completed contribution or arrear payment.
type Transaction struct {
	UUID              string    `json:"uuid" validate:"required"`
	Amount            string    `json:"contribution" validate:"required"`
	TotalPayment      string    `json:"totalPayment"`
	TransactionType   string    `json:"transactionType" validate:"required,oneof=regular arrear"`
	PayingUserName    string    `json:"payingUserName"`
	ReceivingUserName string    `json:"receivingUserName"`
	BillName          string    `json:"billName"`
	BillUUID          string    `json:"billUUID"`
	Created           time.Time `json:"created" validate:"required"`
}

// bankListOptions keep the rarely-changing bank list around far longer than
// the defaults: fresh for ten minutes, evicted after an hour unobserved.
var bankListOptions = cache.Options{
	StaleTime: 10 * time.Minute,
	CacheTime: time.Hour,
}

// GetBanks reads the supported-banks list. Pass-through, long windows.
func (c *Client) GetBanks(ctx context.Context) ([]Bank, error) {
	return runQuery[[]Bank](ctx, c, keyBanks, "/financials/banks/", queryOptions{
		auth:        authRequired,
		passthrough: true,
		cacheOpts:   bankListOptions,
	})
}

// GetCards reads the user's stored cards. Pass-through.
func (c *Client) GetCards(ctx context.Context) ([]Card, error) {
	return runQuery[[]Card](ctx, c, keyCards, "/financials/user-cards/", queryOptions{
		auth:        authRequired,
		passthrough: true,
		cacheOpts:   readOptions,
	})
}

// GetDefaultCard reads the user's default card. Validated, unlike the card
// list.
func (c *Client) GetDefaultCard(ctx context.Context) (Card, error) {
	return runQuery[Card](ctx, c, keyDefaultCard, "/financials/user-cards/default/", queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// SetDefaultCard promotes a card and marks the card list, default card, and
// profile stale.
func (c *Client) SetDefaultCard(ctx context.Context, cardID string) error {
	_, err := runMutation[struct{}, struct{}](
		ctx, c, "setDefaultCard", http.MethodPatch, cardPath(cardID)+"default/", struct{}{},
		queryOptions{auth: authRequired},
	)
	return err
}

// DeleteCard removes a stored card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	_, err := runMutation[struct{}, struct{}](
		ctx, c, "deleteCard", http.MethodDelete, cardPath(cardID), struct{}{},
		queryOptions{auth: authRequired},
	)
	return err
}

// GetTransferRecipients reads the user's payout destinations. Pass-through.
func (c *Client) GetTransferRecipients(ctx context.Context) ([]TransferRecipient, error) {
	return runQuery[[]TransferRecipient](ctx, c, keyTransferRecipients, "/financials/transfer-recipients/", queryOptions{
		auth:        authRequired,
		passthrough: true,
		cacheOpts:   readOptions,
	})
}

// CreateTransferRecipient registers a payout destination and marks the
// recipient list stale.
func (c *Client) CreateTransferRecipient(ctx context.Context, payload CreateRecipientPayload) (TransferRecipient, error) {
	return runMutation[CreateRecipientPayload, TransferRecipient](
		ctx, c, "createTransferRecipient", http.MethodPost, "/financials/transfer-recipients/", payload,
		queryOptions{auth: authRequired},
	)
}

// DeleteTransferRecipient removes a payout destination.
func (c *Client) DeleteTransferRecipient(ctx context.Context, recipientID string) error {
	path := fmt.Sprintf("/financials/transfer-recipients/%s/", url.PathEscape(recipientID))
	_, err := runMutation[struct{}, struct{}](
		ctx, c, "deleteTransferRecipient", http.MethodDelete, path, struct{}{},
		queryOptions{auth: authRequired},
	)
	return err
}

// GetTransactions reads one page of the user's transaction history.
func (c *Client) GetTransactions(ctx context.Context, page int) (Page[Transaction], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	key := keyTransactions.With(strconv.Itoa(page))
	return runQuery[Page[Transaction]](ctx, c, key, withQuery("/financials/transactions/", q), queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

func cardPath(cardID string) string {
	return fmt.Sprintf("/financials/user-cards/%s/", url.PathEscape(cardID))
}
