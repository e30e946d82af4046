package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"shopit-admin/internal/domain"
	apperrors "shopit-admin/internal/errors"
	"shopit-admin/internal/store"
)

// StorePushTargetRepository resolves a user's registered push address. When
// several token records exist, the most recently registered one wins; records
// without a registeredAt field rank oldest.
type StorePushTargetRepository struct {
	store store.Store
}

func NewStorePushTargetRepository(st store.Store) *StorePushTargetRepository {
	return &StorePushTargetRepository{store: st}
}

func (r *StorePushTargetRepository) FindByUser(ctx context.Context, userID string) (*domain.PushTarget, error) {
	collection, err := r.store.Collection(ctx, userID, store.KindPushTargets)
	if err != nil {
		return nil, fmt.Errorf("reading push targets for user %s: %w", userID, err)
	}

	targets := make([]domain.PushTarget, 0, len(collection))
	docIDs := make([]string, 0, len(collection))
	for docID := range collection {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	for _, docID := range docIDs {
		doc := collection[docID]
		token := doc["fcmToken"]
		if token == "" {
			continue
		}
		registeredAt, _ := strconv.ParseInt(doc["registeredAt"], 10, 64)
		targets = append(targets, domain.PushTarget{
			Token:        token,
			RegisteredAt: registeredAt,
		})
	}

	if len(targets) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no push target registered for user %s", userID))
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].RegisteredAt > targets[j].RegisteredAt
	})

	return &targets[0], nil
}
