package model

// Record is one trade transaction, modeled as an open map of field name to
// scalar value (string, float64, bool or nil after JSON decoding). There is
// no fixed schema; filters and aggregations look fields up by name at
// execution time. Records are read-only once loaded into a dataset: filtering
// always produces a new slice, never an in-place mutation.
type Record map[string]interface{}

// Field returns the value for a field and whether the field is present with a
// non-nil value.
func (r Record) Field(name string) (interface{}, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Clone returns a shallow copy of the record. Scalar values are copied by
// value, so the clone is safe to hand out across API boundaries.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
