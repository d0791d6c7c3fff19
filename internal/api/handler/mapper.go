package handler

import (
	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

// --- Request → Service input ---

func toProduct(req addItemRequest) domain.Product {
	return domain.Product{ID: req.ProductID, Name: req.Name, Price: req.Price}
}

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Name:            req.Name,
		Surname:         req.Surname,
		Username:        req.Username,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
}

func toProfileUpdate(req updateUserRequest) ports.ProfileUpdate {
	return ports.ProfileUpdate{
		Username:    req.Username,
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
}

// --- Domain → Response ---

func toCartResponse(v domain.CartView) cartResponse {
	items := make([]cartLineResponse, 0, len(v.Items))
	for _, l := range v.Items {
		items = append(items, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal().StringFixed(2),
			AddedAt:   l.AddedAt,
		})
	}
	return cartResponse{
		Items:     items,
		ItemCount: v.ItemCount,
		Subtotal:  v.SubtotalText(),
		Discount:  v.DiscountText(),
		Total:     v.TotalText(),
		Voucher:   v.Voucher,
	}
}

func toProfileResponse(p *domain.Profile) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		Name:        p.Name,
		Surname:     p.Surname,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Role:        p.Role,
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		UserID:       s.UserID,
		Username:     s.Username,
		Role:         s.Role,
		Profile:      toProfileResponse(s.Profile),
		RedirectPath: s.RedirectPath,
	}
}
