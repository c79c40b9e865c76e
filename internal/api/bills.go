package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Bill statuses as served by the backend.
const (
	BillStatusDraft     = "draft"
	BillStatusPending   = "pending"
	BillStatusOngoing   = "ongoing"
	BillStatusCompleted = "completed"
	BillStatusCancelled = "cancelled"
)

// Bill is the list-item shape of a bill.
type Bill struct {
	UUID           string    `json:"uuid" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Status         string    `json:"status" validate:"required,oneof=draft pending ongoing completed cancelled"`
	TotalAmountDue string    `json:"totalAmountDue" validate:"required"`
	CurrencyCode   string    `json:"currencyCode" validate:"required"`
	Interval       string    `json:"interval" validate:"required,oneof=none daily weekly monthly quarterly biannually annually"`
	IsCreator      bool      `json:"isCreator"`
	IsCreditor     bool      `json:"isCreditor"`
	Created        time.Time `json:"created" validate:"required"`
	Modified       time.Time `json:"modified"`
}

// BillDetail is the full single-bill shape, including per-participant
// actions.
type BillDetail struct {
	UUID              string       `json:"uuid" validate:"required"`
	Name              string       `json:"name" validate:"required"`
	Notes             string       `json:"notes"`
	Status            string       `json:"status" validate:"required,oneof=draft pending ongoing completed cancelled"`
	TotalAmountDue    string       `json:"totalAmountDue" validate:"required"`
	TotalAmountPaid   string       `json:"totalAmountPaid"`
	CurrencyCode      string       `json:"currencyCode" validate:"required"`
	Interval          string       `json:"interval" validate:"required,oneof=none daily weekly monthly quarterly biannually annually"`
	Deadline          *time.Time   `json:"deadline"`
	EvidenceURL       string       `json:"evidenceURL"`
	IsCreator         bool         `json:"isCreator"`
	IsCreditor        bool         `json:"isCreditor"`
	CreatorName       string       `json:"creatorName"`
	CreditorName      string       `json:"creditorName"`
	TotalParticipants int          `json:"totalParticipants"`
	Actions           []BillAction `json:"actions" validate:"dive"`
	Created           time.Time    `json:"created" validate:"required"`
	Modified          time.Time    `json:"modified"`
}

// BillAction is one participant's standing on one bill.
type BillAction struct {
	UUID            string     `json:"uuid" validate:"required"`
	Status          string     `json:"status" validate:"required,oneof=unregistered pending overdue pending_transfer ongoing completed opted_out cancelled"`
	Contribution    string     `json:"contribution"`
	TotalFee        string     `json:"totalPaymentDue"`
	ParticipantName string     `json:"participantName"`
	BillName        string     `json:"billName"`
	BillUUID        string     `json:"billUUID"`
	LastChargeDate  *time.Time `json:"lastChargeDate"`
	Created         time.Time  `json:"created"`
}

// StatusCount is one entry of the action-status aggregate.
type StatusCount struct {
	Status string `json:"status" validate:"required"`
	Count  int    `json:"count" validate:"min=0"`
}

// CreateBillPayload is the writable bill shape. Server-owned fields (uuid,
// status, timestamps) are never part of it.
type CreateBillPayload struct {
	Name                     string              `json:"name"`
	Notes                    string              `json:"notes,omitempty"`
	TotalAmountDue           string              `json:"totalAmountDue"`
	CurrencyCode             string              `json:"currencyCode"`
	Interval                 string              `json:"interval"`
	Deadline                 *time.Time          `json:"deadline,omitempty"`
	FirstChargeDate          *time.Time          `json:"firstChargeDate,omitempty"`
	CreditorID               string              `json:"creditorId"`
	Participants             []ParticipantShare  `json:"participantsContributionIndex"`
	UnregisteredParticipants []UnregisteredShare `json:"unregisteredParticipants,omitempty"`
}

// ParticipantShare assigns a contribution to a registered user.
type ParticipantShare struct {
	UserID       string `json:"userId"`
	Contribution string `json:"contribution"`
}

// UnregisteredShare assigns a contribution to a phone number with no
// account yet.
type UnregisteredShare struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone"`
	Contribution string `json:"contribution"`
}

// BillActionPatch updates one participant action, e.g. opting out.
type BillActionPatch struct {
	HasParticipantApproved *bool `json:"hasParticipantApproved,omitempty"`
	OptedOut               *bool `json:"optedOut,omitempty"`
}

// GetBill reads one bill with its actions.
func (c *Client) GetBill(ctx context.Context, billID string) (BillDetail, error) {
	return runQuery[BillDetail](ctx, c, keyBill.With(billID), billPath(billID), queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// PrefetchBill warms the single-bill cache ahead of navigation.
func (c *Client) PrefetchBill(ctx context.Context, billID string) {
	prefetchQuery[BillDetail](ctx, c, keyBill.With(billID), billPath(billID), queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// GetBills reads one page of the user's bills, optionally filtered by a
// search string. The full key appends search then page to the registered
// prefix.
func (c *Client) GetBills(ctx context.Context, search string, page int) (Page[Bill], error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	key := keyBills.With(search, strconv.Itoa(page))
	return runQuery[Page[Bill]](ctx, c, key, withQuery("/bills/", q), queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// GetUserActionsByStatus reads one page of the user's bill actions in a
// given status. The full key appends status then page to the registered
// prefix.
func (c *Client) GetUserActionsByStatus(ctx context.Context, status string, page int) (Page[BillAction], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	key := keyUserActions.With(status, strconv.Itoa(page))
	return runQuery[Page[BillAction]](ctx, c, key, withQuery("/bills/actions/", q), queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// GetActionStatusCounts reads the per-status totals shown on the home
// screen.
func (c *Client) GetActionStatusCounts(ctx context.Context) ([]StatusCount, error) {
	return runQuery[[]StatusCount](ctx, c, keyActionStatusCounts, "/bills/action-status-counts/", queryOptions{
		auth:      authRequired,
		cacheOpts: readOptions,
	})
}

// CreateBill creates a bill and marks every read it could affect stale:
// the bill list, the user's actions, and the status counts.
func (c *Client) CreateBill(ctx context.Context, payload CreateBillPayload) (BillDetail, error) {
	return runMutation[CreateBillPayload, BillDetail](
		ctx, c, "createBill", http.MethodPost, "/bills/", payload,
		queryOptions{auth: authRequired},
	)
}

// BillPatch is the writable subset of an existing bill. Nil fields are
// omitted from the request body.
type BillPatch struct {
	Name     *string    `json:"name,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// UpdateBill patches an existing bill's editable fields.
func (c *Client) UpdateBill(ctx context.Context, billID string, patch BillPatch) (BillDetail, error) {
	return runMutation[BillPatch, BillDetail](
		ctx, c, "updateBill", http.MethodPatch, billPath(billID), patch,
		queryOptions{auth: authRequired},
	)
}

type billStatusPatch struct {
	Status string `json:"status"`
}

// CancelBill cancels a bill. Conservative invalidation: single bill, bill
// list, user actions, and status counts all go stale.
func (c *Client) CancelBill(ctx context.Context, billID string) (BillDetail, error) {
	return runMutation[billStatusPatch, BillDetail](
		ctx, c, "cancelBill", http.MethodPatch, billPath(billID),
		billStatusPatch{Status: BillStatusCancelled},
		queryOptions{auth: authRequired},
	)
}

// UpdateBillAction patches one participant action (approval or opt-out).
func (c *Client) UpdateBillAction(ctx context.Context, actionID string, patch BillActionPatch) (BillAction, error) {
	path := fmt.Sprintf("/bills/actions/%s/", url.PathEscape(actionID))
	return runMutation[BillActionPatch, BillAction](
		ctx, c, "updateBillAction", http.MethodPatch, path, patch,
		queryOptions{auth: authRequired},
	)
}

func billPath(billID string) string {
	return fmt.Sprintf("/bills/%s/", url.PathEscape(billID))
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
