package service

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = api.Member{ID: m.ID, Name: m.Name}
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func fromAPIMembers(members []api.Member) []models.Member {
	out := make([]models.Member, len(members))
	for i, m := range members {
		out[i] = models.Member{ID: m.ID, Name: m.Name}
	}
	return out
}

func toAPIExpense(g *models.Group, e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   g.MemberName(e.PayerID),
		Amount:      e.Amount,
		Description: e.Description,
		SplitType:   e.SplitType,
		Splits:      toAPISplits(g, e.Splits),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISplits(g *models.Group, splits []models.Split) []api.Split {
	out := make([]api.Split, len(splits))
	for i, s := range splits {
		out[i] = api.Split{MemberID: s.MemberID, Name: g.MemberName(s.MemberID), Amount: s.Amount}
	}
	return out
}

func toAPISettlement(g *models.Group, s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		PayerID:      s.PayerID,
		PayerName:    g.MemberName(s.PayerID),
		ReceiverID:   s.ReceiverID,
		ReceiverName: g.MemberName(s.ReceiverID),
		Amount:       s.Amount,
		Note:         s.Note,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
	}
}

// Calculator conversions. The calculator knows nothing about storage, so the
// persisted models are projected onto its input types here.

func calcMembers(g *models.Group) []calculator.Member {
	out := make([]calculator.Member, len(g.Members))
	for i, m := range g.Members {
		out[i] = calculator.Member{ID: calculator.MemberID(m.ID), Name: m.Name}
	}
	return out
}

func calcExpense(e *models.Expense) calculator.Expense {
	splits := make([]calculator.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = calculator.Split{MemberID: calculator.MemberID(s.MemberID), Amount: s.Amount}
	}
	return calculator.Expense{
		ID:      e.ID,
		PayerID: calculator.MemberID(e.PayerID),
		Amount:  e.Amount,
		Splits:  splits,
	}
}

func calcSettlement(s *models.Settlement) calculator.Settlement {
	return calculator.Settlement{
		ID:         s.ID,
		PayerID:    calculator.MemberID(s.PayerID),
		ReceiverID: calculator.MemberID(s.ReceiverID),
		Amount:     s.Amount,
	}
}

func fromCalcSplits(splits []calculator.Split) []models.Split {
	out := make([]models.Split, len(splits))
	for i, s := range splits {
		out[i] = models.Split{MemberID: string(s.MemberID), Amount: s.Amount}
	}
	return out
}

func calcSplitRequest(req splitParams) calculator.SplitRequest {
	participants := make([]calculator.SplitInput, len(req.participants))
	for i, p := range req.participants {
		participants[i] = calculator.SplitInput{
			MemberID:   calculator.MemberID(p.MemberID),
			Amount:     p.Amount,
			Percentage: p.Percentage,
			Shares:     p.Shares,
		}
	}
	items := make([]calculator.Item, len(req.items))
	for i, item := range req.items {
		assigned := make([]calculator.MemberID, len(item.AssignedTo))
		for j, id := range item.AssignedTo {
			assigned[j] = calculator.MemberID(id)
		}
		items[i] = calculator.Item{Description: item.Description, Amount: item.Amount, AssignedTo: assigned}
	}
	return calculator.SplitRequest{
		Type:         calculator.SplitType(req.splitType),
		Total:        req.amount,
		Participants: participants,
		Items:        items,
	}
}
