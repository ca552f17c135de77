package kernels

import (
	"encoding/json"
	"strings"
)

// kv is one entry of an order-preserving JSON object. encoding/json
// sorts map[string]T keys alphabetically, which is correct for the
// unordered kernels but wrong for best5/worst5/diff_from_mean/
// mean_by_category, whose output order is part of their contract.
type kv struct {
	key string
	val interface{}
}

// marshalOrdered renders pairs as a single JSON object preserving the
// given order.
func marshalOrdered(pairs []kv) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(p.key)
		vb, _ := json.Marshal(p.val)
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.String()
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
