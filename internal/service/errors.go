package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/repository"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// translate maps a repository failure onto the domain error taxonomy:
// ErrNotFound becomes a NotFoundError for the addressed record, everything
// else is a StoreError surfaced to the caller without retrying.
func translate(op, resource string, id primitive.ObjectID, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.NotFoundError{Resource: resource, ID: id.Hex()}
	}
	return &domain.StoreError{Op: op, Err: err}
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StoreError{Op: op, Err: err}
}
