// Package tools exposes the costume service to the support assistant as
// model-callable functions.
package tools

import (
	"context"

	"costumedesk/internal/assistant/toolkit"
	"costumedesk/internal/costume/models"
)

const (
	GetCostumeDetailsName = "getCostumeDetails"
	RemoveCostumeName     = "removeCostume"
)

var claimParameters = []toolkit.Parameter{
	{Name: "id", Description: "The costume id, for example C-100"},
	{Name: "ownerFirstName", Description: "First name of the costume owner"},
	{Name: "ownerLastName", Description: "Last name of the costume owner"},
}

type CostumeService interface {
	GetCostumeDetails(ctx context.Context, id, ownerFirstName, ownerLastName string) (*models.Record, error)
	RemoveCostume(ctx context.Context, id, ownerFirstName, ownerLastName string) error
}

// New returns the costume tools backed by svc.
func New(svc CostumeService) []toolkit.Tool {
	return []toolkit.Tool{
		&GetCostumeDetails{service: svc},
		&RemoveCostume{service: svc},
	}
}

type GetCostumeDetails struct {
	service CostumeService
}

func (t *GetCostumeDetails) Definition() toolkit.Definition {
	return toolkit.Definition{
		Name:        GetCostumeDetailsName,
		Description: "Returns the details of a costume. Requires the costume id and the owner's first and last name.",
		Parameters:  claimParameters,
	}
}

func (t *GetCostumeDetails) Call(ctx context.Context, args toolkit.Args) (toolkit.Result, error) {
	claim, err := claimFrom(args)
	if err != nil {
		return nil, err
	}
	rec, err := t.service.GetCostumeDetails(ctx, claim.ID, claim.OwnerFirstName, claim.OwnerLastName)
	if err != nil {
		return nil, err
	}
	return toolkit.Result{
		"id":      rec.ID,
		"name":    rec.Name,
		"type":    rec.Category,
		"minAge":  rec.MinAge,
		"maxAge":  rec.MaxAge,
		"owner":   map[string]any{"firstName": rec.Owner.FirstName, "lastName": rec.Owner.LastName},
		"message": "costume found",
	}, nil
}

type RemoveCostume struct {
	service CostumeService
}

func (t *RemoveCostume) Definition() toolkit.Definition {
	return toolkit.Definition{
		Name:        RemoveCostumeName,
		Description: "Removes a costume. Requires the costume id and the owner's first and last name. Only call after the user confirmed the removal.",
		Parameters:  claimParameters,
	}
}

func (t *RemoveCostume) Call(ctx context.Context, args toolkit.Args) (toolkit.Result, error) {
	claim, err := claimFrom(args)
	if err != nil {
		return nil, err
	}
	if err := t.service.RemoveCostume(ctx, claim.ID, claim.OwnerFirstName, claim.OwnerLastName); err != nil {
		return nil, err
	}
	return toolkit.Result{"id": claim.ID, "removed": true}, nil
}

func claimFrom(args toolkit.Args) (models.Claim, error) {
	id, err := args.String("id")
	if err != nil {
		return models.Claim{}, err
	}
	first, err := args.String("ownerFirstName")
	if err != nil {
		return models.Claim{}, err
	}
	last, err := args.String("ownerLastName")
	if err != nil {
		return models.Claim{}, err
	}
	return models.Claim{ID: id, OwnerFirstName: first, OwnerLastName: last}, nil
}
