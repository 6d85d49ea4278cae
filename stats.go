package pagekv

import (
	"github.com/hupe1980/pagekv/internal/partition"
)

// PartitionStats describes one non-empty partition.
type PartitionStats struct {
	ID       string `json:"id" yaml:"id"`
	Keys     int    `json:"keys" yaml:"keys"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
	LogBytes int64  `json:"log_bytes" yaml:"log_bytes"`
	DirectIO bool   `json:"direct_io" yaml:"direct_io"`
}

// Stats is a point-in-time summary of an engine. Partitions are sampled one
// after another, so totals may mix states under concurrent writes.
type Stats struct {
	Dir        string           `json:"dir" yaml:"dir"`
	Keys       int              `json:"keys" yaml:"keys"`
	Bytes      int64            `json:"bytes" yaml:"bytes"`
	LogBytes   int64            `json:"log_bytes" yaml:"log_bytes"`
	Partitions int              `json:"partitions" yaml:"partitions"`
	PageSize   int              `json:"page_size" yaml:"page_size"`
	DirectIO   bool             `json:"direct_io" yaml:"direct_io"`
	Durability string           `json:"durability" yaml:"durability"`
	Partition  []PartitionStats `json:"partition,omitempty" yaml:"partition,omitempty"`
}

// Stats reports key counts and sizes. Partitions with an empty log and no
// keys are left out of the per-partition list.
func (e *Engine) Stats() (Stats, error) {
	if e.closed.Load() {
		return Stats{}, ErrClosed
	}

	st := Stats{
		Dir:        e.dir,
		PageSize:   e.pageSize,
		Durability: e.opts.durability.String(),
	}
	for id, p := range e.parts {
		ps := PartitionStats{
			ID:       partition.FileName(id),
			Keys:     p.Len(),
			Bytes:    p.Bytes(),
			LogBytes: p.LogSize(),
			DirectIO: p.Direct(),
		}
		st.DirectIO = st.DirectIO || ps.DirectIO
		if ps.Keys == 0 && ps.LogBytes == 0 {
			continue
		}
		st.Keys += ps.Keys
		st.Bytes += ps.Bytes
		st.LogBytes += ps.LogBytes
		st.Partitions++
		st.Partition = append(st.Partition, ps)
	}

	if e.closed.Load() {
		return Stats{}, ErrClosed
	}
	return st, nil
}
