package recurring

import (
	"sort"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Detection thresholds used when a Detector field is left zero.
const (
	DefaultMinOccurrences      = 3
	DefaultConfidenceThreshold = 0.6
)

// Detector runs the full pattern-detection pipeline: cluster, infer
// cadence, score, and build proposals for anything above threshold.
// All fields are optional.
type Detector struct {
	MinOccurrences      int
	ConfidenceThreshold float64
	SimilarityThreshold float64   // > 0 clusters by edit distance instead of exact key
	AsOf                time.Time // recency anchor; zero = newest transaction
}

// Detect returns scored proposals for a transaction history, highest
// confidence first. Transactions already linked to a template are
// excluded, and clusters that fall below the occurrence minimum, fit
// no cadence band, or score under the threshold are silently omitted.
func (d Detector) Detect(txs []repository.Transaction) []Proposal {
	minOcc := d.MinOccurrences
	if minOcc <= 0 {
		minOcc = DefaultMinOccurrences
	}
	threshold := d.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	unlinked := make([]repository.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.RecurringTemplateID == nil {
			unlinked = append(unlinked, tx)
		}
	}

	groups := ClusterByKey(unlinked)
	if d.SimilarityThreshold > 0 {
		groups = ClusterBySimilarity(unlinked, d.SimilarityThreshold)
	}

	var proposals []Proposal
	for _, g := range groups {
		if len(g.Transactions) < minOcc {
			continue
		}
		det, err := DetectFrequency(sortedDates(g.Transactions))
		if err != nil {
			continue
		}
		conf := Score(g.Transactions, det, d.AsOf)
		if conf.Score < threshold {
			continue
		}
		proposals = append(proposals, BuildProposal(g, det, conf))
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].ConfidenceScore != proposals[j].ConfidenceScore {
			return proposals[i].ConfidenceScore > proposals[j].ConfidenceScore
		}
		return proposals[i].NormalizedDescription < proposals[j].NormalizedDescription
	})
	return proposals
}
