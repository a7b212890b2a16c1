package recurring

import (
	"math"

	"github.com/agnivade/levenshtein"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Group is a candidate recurring cluster. The first transaction added
// acts as the group's anchor for similarity and amount comparisons,
// so clustering is deterministic for a fixed input order.
type Group struct {
	Key          string
	Transactions []repository.Transaction
}

// Similarity scores two descriptions 0-100 using levenshtein distance
// relative to the longer string. Two empty strings score 100.
func Similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(maxLen)) * 100
}

// ClusterByKey groups transactions by exact GroupKey equality. Groups
// come back in first-seen order.
func ClusterByKey(txs []repository.Transaction) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, tx := range txs {
		key := GroupKey(tx.Description)
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, Group{Key: key})
			i = len(groups) - 1
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// ClusterBySimilarity places each transaction into the first existing
// group whose anchor shares its category, has an amount within 10%,
// and a description similarity of at least threshold (0-100). A
// transaction matching no group starts a new one.
func ClusterBySimilarity(txs []repository.Transaction, threshold float64) []Group {
	var groups []Group
	for _, tx := range txs {
		placed := false
		for i := range groups {
			anchor := groups[i].Transactions[0]
			if anchor.Category != tx.Category {
				continue
			}
			if !amountWithinTolerance(tx.AmountCents, anchor.AmountCents, 0.10) {
				continue
			}
			if Similarity(tx.Description, anchor.Description) < threshold {
				continue
			}
			groups[i].Transactions = append(groups[i].Transactions, tx)
			placed = true
			break
		}
		if !placed {
			groups = append(groups, Group{
				Key:          GroupKey(tx.Description),
				Transactions: []repository.Transaction{tx},
			})
		}
	}
	return groups
}

func amountWithinTolerance(amount, anchor int64, tolerance float64) bool {
	diff := math.Abs(float64(amount - anchor))
	return diff <= tolerance*math.Abs(float64(anchor))
}
