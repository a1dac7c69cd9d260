package nodepbf

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/nodepbf/blob"
	"github.com/arloliu/nodepbf/block"
	"github.com/arloliu/nodepbf/format"
)

// Metrics holds the decoder counters.
type Metrics struct {
	BlobsRead        *prometheus.CounterVec
	BlobBytes        *prometheus.CounterVec
	NodesDecoded     *prometheus.CounterVec
	NodesMatched     prometheus.Counter
	TruncatedBatches prometheus.Counter
}

// NewMetrics creates the decoder metrics and registers them with reg when it is
// non-nil. Metrics already registered by an earlier parser are shared.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	blobsRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nodepbf_blobs_read_total",
		Help: "Total blobs read, by blob type",
	}, []string{"type"})

	blobBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nodepbf_blob_bytes_total",
		Help: "Total data blob bytes, as stored (compressed) and inflated (raw)",
	}, []string{"stage"})

	nodesDecoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nodepbf_nodes_decoded_total",
		Help: "Total nodes decoded, by group encoding",
	}, []string{"encoding"})

	nodesMatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nodepbf_nodes_matched_total",
		Help: "Total nodes accepted by the tag matcher",
	})

	truncated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nodepbf_truncated_tag_lists_total",
		Help: "Total dense batches whose tag list ended early",
	})

	if reg != nil {
		blobsRead = register(reg, blobsRead)
		blobBytes = register(reg, blobBytes)
		nodesDecoded = register(reg, nodesDecoded)
		nodesMatched = register(reg, nodesMatched)
		truncated = register(reg, truncated)
	}

	return &Metrics{
		BlobsRead:        blobsRead,
		BlobBytes:        blobBytes,
		NodesDecoded:     nodesDecoded,
		NodesMatched:     nodesMatched,
		TruncatedBatches: truncated,
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}

	return c
}

func blobTypeLabel(typ string) string {
	switch typ {
	case format.BlobTypeHeader, format.BlobTypeData:
		return typ
	default:
		return "unknown"
	}
}

func (m *Metrics) observeBlob(typ string) {
	m.BlobsRead.WithLabelValues(blobTypeLabel(typ)).Inc()
}

func (m *Metrics) observePayload(p blob.Payload) {
	m.BlobBytes.WithLabelValues("compressed").Add(float64(p.StoredSize))
	m.BlobBytes.WithLabelValues("raw").Add(float64(len(p.Data)))
}

func (m *Metrics) observeBlock(s block.Stats) {
	m.NodesDecoded.WithLabelValues("plain").Add(float64(s.PlainNodes))
	m.NodesDecoded.WithLabelValues("dense").Add(float64(s.DenseNodes))
	m.NodesMatched.Add(float64(s.Matched))
	m.TruncatedBatches.Add(float64(s.TruncatedBatches))
}
