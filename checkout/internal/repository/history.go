package repository

import (
	"sort"
	"time"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

// mergeHistory puts the live loan first, whatever its timestamps, followed by
// the returned loans most recently returned first.
func mergeHistory(active *model.Checkout, returned []model.Checkout) []model.Checkout {
	history := make([]model.Checkout, 0, len(returned)+1)
	if active != nil {
		history = append(history, *active)
	}
	past := append([]model.Checkout(nil), returned...)
	sort.SliceStable(past, func(i, j int) bool {
		ri, rj := returnedAt(past[i]), returnedAt(past[j])
		if !ri.Equal(rj) {
			return ri.After(rj)
		}
		return past[i].CheckedOutAt.After(past[j].CheckedOutAt)
	})
	return append(history, past...)
}

func returnedAt(c model.Checkout) time.Time {
	if c.ReturnedAt == nil {
		return time.Time{}
	}
	return *c.ReturnedAt
}
