package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inisoye/halver-sub001/internal/api"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "halver",
		Short:         "Halver bill-splitting client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newBillsCommand(a),
		newBillCommand(a),
		newCreateBillCommand(a),
		newCancelBillCommand(a),
		newActionsCommand(a),
		newBanksCommand(a),
		newCardsCommand(a),
		newRecipientsCommand(a),
		newTransactionsCommand(a),
	)
	return root
}

// printJSON renders any result for the terminal.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client.Login(cmd.Context(), api.LoginPayload{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				// Local state is already cleared; the server-side
				// revocation failing is worth noting, not fatal.
				a.logger.Warn("server logout failed", "error", err)
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.GetUserDetails(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
}

func newBillsCommand(a *app) *cobra.Command {
	var search string
	var page int
	var all bool
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List your bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				bills, err := a.client.GetBills(cmd.Context(), search, page)
				if err != nil {
					return err
				}
				return printJSON(bills)
			}

			// Walk pages until the server reports no next page.
			var results []api.Bill
			for p := 1; ; p++ {
				pageResult, err := a.client.GetBills(cmd.Context(), search, p)
				if err != nil {
					return err
				}
				results = append(results, pageResult.Results...)
				if !pageResult.HasNext() {
					break
				}
			}
			return printJSON(results)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter bills by name")
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	return cmd
}

func newBillCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bill <uuid>",
		Short: "Show one bill with its participant actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := a.client.GetBill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(bill)
		},
	}
}

func newCreateBillCommand(a *app) *cobra.Command {
	var fromFile string
	var fromDraft bool
	cmd := &cobra.Command{
		Use:   "create-bill",
		Short: "Create a bill from a JSON file or the saved draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload api.CreateBillPayload

			switch {
			case fromDraft:
				draft, ok := a.store.BillDraft()
				if !ok {
					return fmt.Errorf("no saved bill draft")
				}
				payload = api.CreateBillPayload{
					Name:           draft.Name,
					TotalAmountDue: draft.TotalAmount,
					Interval:       draft.Interval,
				}
				for _, p := range draft.Participants {
					payload.UnregisteredParticipants = append(payload.UnregisteredParticipants, api.UnregisteredShare{
						Name:         p.Name,
						PhoneNumber:  p.PhoneNumber,
						Contribution: p.Contribution,
					})
				}
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &payload); err != nil {
					return fmt.Errorf("parse %s: %w", fromFile, err)
				}
			default:
				return fmt.Errorf("either --file or --from-draft is required")
			}

			bill, err := a.client.CreateBill(cmd.Context(), payload)
			if err != nil {
				return err
			}
			if fromDraft {
				if err := a.store.ClearBillDraft(); err != nil {
					a.logger.Warn("could not clear bill draft", "error", err)
				}
			}
			return printJSON(bill)
		},
	}
	cmd.Flags().StringVar(&fromFile, "file", "", "JSON file with the bill payload")
	cmd.Flags().BoolVar(&fromDraft, "from-draft", false, "use the locally saved draft")
	return cmd
}

func newCancelBillCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-bill <uuid>",
		Short: "Cancel a bill you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := a.client.CancelBill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(bill)
		},
	}
}

func newActionsCommand(a *app) *cobra.Command {
	var status string
	var page int
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List your bill actions, with per-status totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.client.GetActionStatusCounts(cmd.Context())
			if err != nil {
				return err
			}
			actions, err := a.client.GetUserActionsByStatus(cmd.Context(), status, page)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"statusCounts": counts,
				"actions":      actions,
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by action status")
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	return cmd
}

func newBanksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			banks, err := a.client.GetBanks(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(banks)
		},
	}
}

func newCardsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List stored cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.client.GetCards(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cards)
		},
	}
}

func newRecipientsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recipients",
		Short: "List transfer recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			recipients, err := a.client.GetTransferRecipients(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(recipients)
		},
	}
}

func newTransactionsCommand(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List your transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := a.client.GetTransactions(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(txns)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	return cmd
}
