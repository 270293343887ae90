package service

import (
	"context"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200

	// overviewConcurrency bounds the ledgers loaded at once by
	// GetOverallBalances.
	overviewConcurrency = 4
)

// settlementPlan is everything derived from one group ledger.
type settlementPlan struct {
	balances   calculator.Balances
	debts      []calculator.Debt
	totalSpent decimal.Decimal
}

// computePlan is the single place balances and debts are derived. Every
// view (group balances, debts, the cross-group overview) goes through it.
func (s *LedgerService) computePlan(ledger *models.Ledger) (*settlementPlan, error) {
	expenses := make([]calculator.Expense, len(ledger.Expenses))
	totalSpent := decimal.Zero
	for i, e := range ledger.Expenses {
		expenses[i] = calcExpense(e)
		totalSpent = totalSpent.Add(e.Amount)
	}
	settlements := make([]calculator.Settlement, len(ledger.Settlements))
	for i, st := range ledger.Settlements {
		settlements[i] = calcSettlement(st)
	}

	balances, err := calculator.ComputeBalances(calcMembers(ledger.Group), expenses, settlements)
	if err != nil {
		s.metrics.SettlementFailed()
		return nil, err
	}
	debts, err := calculator.SimplifyDebts(balances)
	if err != nil {
		s.metrics.SettlementFailed()
		return nil, err
	}

	s.metrics.ObserveSettlement(len(expenses)+len(settlements), len(debts))
	return &settlementPlan{balances: balances, debts: debts, totalSpent: totalSpent}, nil
}

// GetGroupBalances returns each member's net balance, the simplified list of
// transfers that settles the group, and the total spent.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}
	ledger, err := s.store.GetLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not load ledger", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	plan, err := s.computePlan(ledger)
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	group := ledger.Group
	balances := make([]api.MemberBalance, len(group.Members))
	for i, m := range group.Members {
		balances[i] = api.MemberBalance{
			MemberID: m.ID,
			Name:     m.Name,
			Amount:   plan.balances[calculator.MemberID(m.ID)],
		}
	}
	debts := make([]api.Debt, len(plan.debts))
	for i, d := range plan.debts {
		debts[i] = api.Debt{
			From:     string(d.From),
			FromName: group.MemberName(string(d.From)),
			To:       string(d.To),
			ToName:   group.MemberName(string(d.To)),
			Amount:   d.Amount,
		}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", group.ID,
		"expenses_count", len(ledger.Expenses),
		"settlements_count", len(ledger.Settlements),
		"debts_count", len(debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:   balances,
		Debts:      debts,
		TotalSpent: plan.totalSpent,
	}), nil
}

// GetOverallBalances summarizes, per friend, what the caller is owed or owes
// across every group they share. Amounts come from each group's simplified
// debts, so they match what GetGroupBalances reports.
func (s *LedgerService) GetOverallBalances(ctx context.Context, req *connect.Request[api.GetOverallBalancesRequest]) (*connect.Response[api.GetOverallBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetOverallBalances request received", "user_id", userID)

	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		slog.Error("GetOverallBalances failed - could not list groups", "error", err)
		return nil, toConnectError(err)
	}

	type groupResult struct {
		group *models.Group
		plan  *settlementPlan
	}
	results := make([]groupResult, len(groups))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(overviewConcurrency)
	for i, g := range groups {
		eg.Go(func() error {
			ledger, err := s.store.GetLedger(egCtx, g.ID)
			if err != nil {
				return err
			}
			plan, err := s.computePlan(ledger)
			if err != nil {
				return err
			}
			results[i] = groupResult{group: ledger.Group, plan: plan}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Error("GetOverallBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObserveOverview(len(groups))

	friends := make(map[string]*api.FriendBalance)
	friend := func(g *models.Group, id string) *api.FriendBalance {
		f, ok := friends[id]
		if !ok {
			f = &api.FriendBalance{MemberID: id, Name: g.MemberName(id), Amount: decimal.Zero}
			friends[id] = f
		}
		return f
	}

	for _, r := range results {
		perFriend := make(map[string]decimal.Decimal)
		var order []string
		for _, d := range r.plan.debts {
			var other string
			var amount decimal.Decimal
			switch calculator.MemberID(userID) {
			case d.To:
				other, amount = string(d.From), d.Amount
			case d.From:
				other, amount = string(d.To), d.Amount.Neg()
			default:
				continue
			}
			if _, seen := perFriend[other]; !seen {
				order = append(order, other)
			}
			perFriend[other] = perFriend[other].Add(amount)
		}
		for _, id := range order {
			f := friend(r.group, id)
			f.Amount = f.Amount.Add(perFriend[id])
			f.Groups = append(f.Groups, api.GroupDebt{
				GroupID:   r.group.ID,
				GroupName: r.group.Name,
				Amount:    perFriend[id],
			})
		}
	}

	resp := &api.GetOverallBalancesResponse{
		Friends:    make([]api.FriendBalance, 0, len(friends)),
		TotalOwed:  decimal.Zero,
		TotalOwing: decimal.Zero,
	}
	for _, f := range friends {
		switch {
		case f.Amount.IsPositive():
			resp.TotalOwed = resp.TotalOwed.Add(f.Amount)
		case f.Amount.IsNegative():
			resp.TotalOwing = resp.TotalOwing.Add(f.Amount.Neg())
		}
		resp.Friends = append(resp.Friends, *f)
	}
	sort.Slice(resp.Friends, func(i, j int) bool {
		if resp.Friends[i].Name != resp.Friends[j].Name {
			return resp.Friends[i].Name < resp.Friends[j].Name
		}
		return resp.Friends[i].MemberID < resp.Friends[j].MemberID
	})

	slog.Info("GetOverallBalances successful",
		"user_id", userID,
		"groups_count", len(groups),
		"friends_count", len(resp.Friends),
	)
	return connect.NewResponse(resp), nil
}

// ListActivity returns a group's recent expenses and settlements, newest
// first.
func (s *LedgerService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)

	activity, err := s.store.ListActivity(ctx, group.ID, limit)
	if err != nil {
		slog.Error("ListActivity failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Activity, len(activity))
	for i, a := range activity {
		description := a.Description
		if description == "" && a.Kind == models.ActivitySettlement {
			description = settlementDescription(group.MemberName(a.ActorID), group.MemberName(a.CounterpartyID))
		}
		out[i] = &api.Activity{
			ID:          a.ID,
			GroupID:     a.GroupID,
			Kind:        string(a.Kind),
			Description: description,
			Amount:      a.Amount,
			ActorID:     a.ActorID,
			ActorName:   group.MemberName(a.ActorID),
			CreatedAt:   a.CreatedAt,
		}
	}
	return connect.NewResponse(&api.ListActivityResponse{Activity: out}), nil
}
