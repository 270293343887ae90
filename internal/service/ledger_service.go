package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService records expenses and settlements and derives balances and
// debts from them.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewLedgerService creates a LedgerService. m may be nil.
func NewLedgerService(store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, metrics: m}
}

// splitParams is the split-related part of the expense requests.
type splitParams struct {
	amount       decimal.Decimal
	splitType    string
	participants []api.SplitInput
	items        []api.Item
}

// buildSplits resolves a split against the group roster and validates the
// resulting expense. An equal split with no participants covers the whole
// roster.
func buildSplits(group *models.Group, payerID string, p splitParams) ([]models.Split, string, error) {
	if p.splitType == "" {
		p.splitType = string(calculator.SplitEqual)
	}
	if len(p.participants) == 0 && p.splitType == string(calculator.SplitEqual) {
		for _, m := range group.Members {
			p.participants = append(p.participants, api.SplitInput{MemberID: m.ID})
		}
	}

	splits, err := calculator.BuildSplits(calcSplitRequest(p))
	if err != nil {
		return nil, "", err
	}

	exp := calculator.Expense{
		PayerID: calculator.MemberID(payerID),
		Amount:  p.amount,
		Splits:  splits,
	}
	if err := calculator.ValidateExpense(calcMembers(group), exp); err != nil {
		return nil, "", err
	}
	return fromCalcSplits(splits), p.splitType, nil
}

func splitNames(group *models.Group, splits []models.Split) []string {
	names := make([]string, 0, len(splits))
	for _, s := range splits {
		if s.Amount.IsPositive() {
			names = append(names, group.MemberName(s.MemberID))
		}
	}
	return names
}

// PreviewSplit resolves a split without recording anything.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	// The caller stands in as payer; only the splits are returned.
	splits, _, err := buildSplits(group, userID, splitParams{
		amount:       req.Msg.Amount,
		splitType:    req.Msg.SplitType,
		participants: req.Msg.Participants,
		items:        req.Msg.Items,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.PreviewSplitResponse{Splits: toAPISplits(group, splits)}), nil
}

// CreateExpense records an expense paid by one member for the group.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount.String(),
		"split_type", req.Msg.SplitType,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	splits, splitType, err := buildSplits(group, req.Msg.PayerID, splitParams{
		amount:       req.Msg.Amount,
		splitType:    req.Msg.SplitType,
		participants: req.Msg.Participants,
		items:        req.Msg.Items,
	})
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" {
		description = defaultDescription(splitNames(group, splits))
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     req.Msg.PayerID,
		Amount:      calculator.RoundMinor(req.Msg.Amount),
		Description: description,
		SplitType:   splitType,
		Splits:      splits,
		CreatedBy:   userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(group, expense)}), nil
}

// expenseForMember loads an expense and its group, checking membership.
func (s *LedgerService) expenseForMember(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, fmt.Errorf("%w: expense id is required", errInvalidArgument)
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// GetExpense retrieves a single expense.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expense, group, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(group, expense)}), nil
}

// ListExpenses returns a group's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(group, e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense replaces an expense's payer, amount, description and
// splits.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	splits, splitType, err := buildSplits(group, req.Msg.PayerID, splitParams{
		amount:       req.Msg.Amount,
		splitType:    req.Msg.SplitType,
		participants: req.Msg.Participants,
		items:        req.Msg.Items,
	})
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	expense.PayerID = req.Msg.PayerID
	expense.Amount = calculator.RoundMinor(req.Msg.Amount)
	expense.SplitType = splitType
	expense.Splits = splits
	if description := strings.TrimSpace(req.Msg.Description); description != "" {
		expense.Description = description
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(group, expense)}), nil
}

// DeleteExpense removes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.expenseForMember(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// CreateSettlement records a payment from one member to another.
func (s *LedgerService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", req.Msg.Amount.String(),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		PayerID:    req.Msg.PayerID,
		ReceiverID: req.Msg.ReceiverID,
		Amount:     calculator.RoundMinor(req.Msg.Amount),
		Note:       strings.TrimSpace(req.Msg.Note),
		CreatedBy:  userID,
	}
	if err := calculator.ValidateSettlement(calcMembers(group), calcSettlement(settlement)); err != nil {
		slog.Warn("CreateSettlement rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(group, settlement)}), nil
}

// ListSettlements returns a group's settlements, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(group, st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement.
func (s *LedgerService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, toConnectError(fmt.Errorf("%w: settlement id is required", errInvalidArgument))
	}
	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := memberGroup(ctx, s.store, settlement.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
