package handler

import "costumedesk/internal/costume/models"

type OwnerResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CostumeResponse struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	MinAge int           `json:"min_age"`
	MaxAge int           `json:"max_age"`
	Owner  OwnerResponse `json:"owner"`
}

func toCostumeResponse(r *models.Record) *CostumeResponse {
	return &CostumeResponse{
		ID:     r.ID,
		Name:   r.Name,
		Type:   r.Category,
		MinAge: r.MinAge,
		MaxAge: r.MaxAge,
		Owner: OwnerResponse{
			FirstName: r.Owner.FirstName,
			LastName:  r.Owner.LastName,
		},
	}
}
