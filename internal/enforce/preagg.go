package enforce

import (
	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
)

// PreAggregates removes acv and mrr. Only event-level data is exposed.
var PreAggregates Enforcer = NewFunc("preagg", func(rec dataset.Record, _ *fake.Source) {
	delete(rec, "acv")
	delete(rec, "mrr")
})
